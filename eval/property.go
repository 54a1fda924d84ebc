package eval

import (
	"encoding/binary"
	"math/big"
	"math/rand"

	"golang.org/x/crypto/blake2b"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/uplc"
)

// Generator produces one randomized Data argument from a seeded PRNG.
type Generator func(r *rand.Rand) *data.Value

// Outcome is one property-test case's observable result: either a
// reduced value or the Info string of the runtime failure it produced.
type Outcome struct {
	Args    []*data.Value
	Value   *data.Value
	Failure string
}

// Oracle predicts the expected Outcome for a given input tuple,
// independent of running the compiled program (typically a direct Go
// implementation of the property under test).
type Oracle func(args []*data.Value) Outcome

// RunProperty runs n randomized cases of prog through the oracle,
// seeding the PRNG deterministically from runName via blake2b-256 so a
// failing case is reproducible from the run name alone, without storing
// the random stream. It returns
// every case plus the subset that mismatched the oracle.
func RunProperty(prog *uplc.Program, model *CostModel, budget Budget, runName string, gens []Generator, n int, oracle Oracle) (all, mismatches []Outcome, err error) {
	h := blake2b.Sum256([]byte(runName))
	seed := int64(binary.LittleEndian.Uint64(h[:8]))
	r := rand.New(rand.NewSource(seed))

	for i := 0; i < n; i++ {
		args := make([]*data.Value, len(gens))
		for j, g := range gens {
			args[j] = g(r)
		}
		got := Outcome{Args: args}
		val, _, runErr := Run(prog, args, model, budget)
		if runErr != nil {
			failure, ok := runtimeFailureInfo(runErr)
			if !ok {
				return nil, nil, runErr
			}
			got.Failure = failure
		} else {
			got.Value = val
		}
		want := oracle(args)
		all = append(all, got)
		if !outcomeEqual(got, want) {
			mismatches = append(mismatches, got)
		}
	}
	return all, mismatches, nil
}

func runtimeFailureInfo(err error) (string, bool) {
	switch e := err.(type) {
	case *errs.RuntimeError:
		return e.Info, true
	case *errs.BudgetError:
		return "out of budget", true
	}
	return "", false
}

func outcomeEqual(got, want Outcome) bool {
	if got.Failure != "" || want.Failure != "" {
		return got.Failure == want.Failure
	}
	return data.Equal(got.Value, want.Value)
}

// IntGenerator produces uniformly distributed big integers in [lo, hi].
func IntGenerator(lo, hi int64) Generator {
	return func(r *rand.Rand) *data.Value {
		span := hi - lo + 1
		return data.IntFromInt64(lo + r.Int63n(span))
	}
}

// BoolGenerator produces a uniformly random Bool Data value.
func BoolGenerator() Generator {
	return func(r *rand.Rand) *data.Value {
		return data.BoolValue(r.Intn(2) == 0)
	}
}

// BytesGenerator produces a uniformly random byte string of length n.
func BytesGenerator(n int) Generator {
	return func(r *rand.Rand) *data.Value {
		b := make([]byte, n)
		r.Read(b)
		return data.Bytes(b)
	}
}

// ListGenerator builds a list of between 0 and maxLen elements, each from
// elem.
func ListGenerator(elem Generator, maxLen int) Generator {
	return func(r *rand.Rand) *data.Value {
		n := r.Intn(maxLen + 1)
		items := make([]*data.Value, n)
		for i := range items {
			items[i] = elem(r)
		}
		return data.List(items)
	}
}

// BigIntGenerator produces integers with up to bits of magnitude,
// randomly signed, for properties that must hold beyond Int63 range.
func BigIntGenerator(bits int) Generator {
	return func(r *rand.Rand) *data.Value {
		n := new(big.Int).Rand(r, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
		if r.Intn(2) == 0 {
			n.Neg(n)
		}
		return data.Int(n)
	}
}
