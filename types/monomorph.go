package types

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/SamJeffrey8/helios/source"
)

// Mono is one monomorphisation table entry: a generic declaration
// specialised for one concrete type-argument tuple.
type Mono struct {
	DeclName string
	Args     []*Type
	Index    int // unique index across this compile, used to name the specialisation
}

// MonoTable is append-only within one compile. Cache keys are
// content-addressed with blake2b-256 over the declaration name and a
// canonical rendering of the argument tuple.
//
// There is no in-progress/visiting state here: a generic declaration's
// body is type-checked exactly once, under its placeholder type
// parameters (see ir.Builder's "IR lowering is type-erased" note);
// Specialise is called per concrete call site purely to assign each
// distinct (decl, args) pair a stable index for deterministic naming, and
// always returns immediately (cache hit or a fresh entry). A call can
// never re-enter Specialise for the same key while that key's own entry
// is still being produced, so a growing-type-argument cycle has no
// opportunity to recurse during type-checking; any such cycle is bounded
// by the finite call expressions written in the source.
type MonoTable struct {
	entries map[string]*Mono
	order   []*Mono
}

func NewMonoTable() *MonoTable {
	return &MonoTable{entries: map[string]*Mono{}}
}

func monoKey(declName string, args []*Type) string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s", declName)
	for _, a := range args {
		fmt.Fprintf(h, "|%s", a.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Specialise returns the cached Mono entry for (declName, args), creating
// one on first reference.
func (t *MonoTable) Specialise(declName string, args []*Type, at source.Site) (*Mono, bool, error) {
	key := monoKey(declName, args)
	if m, ok := t.entries[key]; ok {
		return m, false, nil
	}
	m := &Mono{DeclName: declName, Args: args, Index: len(t.order)}
	t.entries[key] = m
	t.order = append(t.order, m)
	return m, true, nil
}

// All returns every specialisation in creation order, for deterministic
// emission.
func (t *MonoTable) All() []*Mono { return t.order }
