// Package source holds the immutable source buffer, source positions, and
// the code-map that links synthesized IR positions back to user source.
package source

import "fmt"

// Unit is an immutable named byte buffer plus an optional code-map.
type Unit struct {
	ID       string
	Path     string // display path; may be synthetic for inline/test sources
	Raw      []byte
	CodeMap  []MapEntry
	imported bool // true if included via `import`, for diagnostics only
}

// MapEntry links a byte offset in synthesized IR text to the original Site
// it was produced from.
type MapEntry struct {
	IROffset int
	Original Site
}

// New wraps raw source bytes under a unit ID used by Site for identity
// comparisons.
func New(id, path string, raw []byte) *Unit {
	return &Unit{ID: id, Path: path, Raw: raw}
}

// NewImported is like New but marks the unit as pulled in via an import
// statement; Imported reports the mark.
func NewImported(id, path string, raw []byte) *Unit {
	u := New(id, path, raw)
	u.imported = true
	return u
}

// Imported reports whether this unit was pulled in via `import`.
func (u *Unit) Imported() bool { return u.imported }

// Text returns the slice of the unit's bytes covered by [start,end).
func (u *Unit) Text(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(u.Raw) || end < start {
		end = len(u.Raw)
	}
	return string(u.Raw[start:end])
}

// AddMapping records that ir-text offset off originated at site s.
func (u *Unit) AddMapping(off int, s Site) {
	u.CodeMap = append(u.CodeMap, MapEntry{IROffset: off, Original: s})
}

// Site is an immutable source position: the unit it belongs to, a
// half-open byte range, and an optional upstream site for positions that
// were rewritten during import inclusion or code-map lookups.
type Site struct {
	Unit     *Unit
	Start    int
	End      int // End == Start means a point position with no span
	Upstream *Site
}

// NewSite builds a point site at start.
func NewSite(u *Unit, start int) Site {
	return Site{Unit: u, Start: start, End: start}
}

// NewSpan builds a ranged site covering [start,end).
func NewSpan(u *Unit, start, end int) Site {
	return Site{Unit: u, Start: start, End: end}
}

// WithUpstream returns a copy of s annotated with an upstream site, used
// when a token or IR node is synthesized from imported source text.
func (s Site) WithUpstream(up Site) Site {
	s.Upstream = &up
	return s
}

// Equal compares sites by unit identity and numeric range.
func (s Site) Equal(o Site) bool {
	return s.Unit == o.Unit && s.Start == o.Start && s.End == o.End
}

// IsZero reports whether s carries no unit (the uninitialized value).
func (s Site) IsZero() bool { return s.Unit == nil }

// Text returns the source text this site covers.
func (s Site) Text() string {
	if s.Unit == nil {
		return ""
	}
	return s.Unit.Text(s.Start, s.End)
}

// String renders a site as "path@offset" or "path@start-end" for
// diagnostics; LineCol should be preferred where a Unit's line index is
// available (see diag package).
func (s Site) String() string {
	if s.Unit == nil {
		return "<no site>"
	}
	if s.End <= s.Start+1 {
		return fmt.Sprintf("%s@%d", s.Unit.Path, s.Start)
	}
	return fmt.Sprintf("%s@%d-%d", s.Unit.Path, s.Start, s.End)
}

// LineCol computes a 1-based (line, column) pair for offset in the unit's
// raw buffer. Recomputed on demand rather than cached, since it is only
// needed for diagnostics, not on any hot path.
func (u *Unit) LineCol(offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(u.Raw); i++ {
		if u.Raw[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Resolve walks a code-map to find the original site that produced the IR
// text at off, returning ok=false if no mapping exists for that offset.
func (u *Unit) Resolve(off int) (Site, bool) {
	for i := len(u.CodeMap) - 1; i >= 0; i-- {
		if u.CodeMap[i].IROffset == off {
			return u.CodeMap[i].Original, true
		}
	}
	return Site{}, false
}
