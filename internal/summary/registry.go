package summary

import (
	"fmt"

	"github.com/gnolang/targ/internal/interval"
)

// Summary is the ordered precondition list of one modeled function.
// Constraints are applied left-to-right; order is significant.
type Summary struct {
	Name        string
	Constraints []Constraint
}

// Registry is an immutable lookup table from callee name to summary.
type Registry struct {
	summaries map[string]Summary
}

// NewRegistry validates and indexes the given summaries. Malformed
// entries (negative argument positions, empty allowed sets, a
// relational constraint against itself) are configuration errors and
// are rejected here, before anything reaches the engine.
func NewRegistry(sums ...Summary) (*Registry, error) {
	reg := &Registry{summaries: make(map[string]Summary, len(sums))}
	for _, sum := range sums {
		if sum.Name == "" {
			return nil, fmt.Errorf("summary without a function name")
		}
		if err := validate(sum); err != nil {
			return nil, fmt.Errorf("summary %q: %w", sum.Name, err)
		}
		reg.summaries[sum.Name] = sum
	}
	return reg, nil
}

// MustRegistry is NewRegistry for statically known tables.
func MustRegistry(sums ...Summary) *Registry {
	reg, err := NewRegistry(sums...)
	if err != nil {
		panic(err)
	}
	return reg
}

func validate(sum Summary) error {
	for i, c := range sum.Constraints {
		switch c := c.(type) {
		case RangeConstraint:
			if c.Arg < 0 {
				return fmt.Errorf("constraint %d: negative argument position %d", i, c.Arg)
			}
			if c.Allowed.IsEmpty() {
				return fmt.Errorf("constraint %d: empty allowed range", i)
			}
		case NotNullConstraint:
			if c.Arg < 0 {
				return fmt.Errorf("constraint %d: negative argument position %d", i, c.Arg)
			}
		case RelationalConstraint:
			if c.Arg < 0 || c.Other < 0 {
				return fmt.Errorf("constraint %d: negative argument position", i)
			}
			if c.Arg == c.Other {
				return fmt.Errorf("constraint %d: argument %d compared with itself", i, c.Arg)
			}
		default:
			return fmt.Errorf("constraint %d: unknown constraint variant %T", i, c)
		}
	}
	return nil
}

// Lookup resolves a callee name to its summary.
func (r *Registry) Lookup(name string) (Summary, bool) {
	sum, ok := r.summaries[name]
	return sum, ok
}

// Len returns the number of registered summaries.
func (r *Registry) Len() int {
	return len(r.summaries)
}

// Names returns the registered function names, unordered.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.summaries))
	for name := range r.summaries {
		out = append(out, name)
	}
	return out
}

// Builtins returns the shipped function models: the ctype character
// classifiers, which accept EOF (-1) or an unsigned char value, and
// fread/fwrite, which require non-null buffer and stream pointers.
func Builtins() []Summary {
	ctypeArg := func() Constraint {
		return RangeConstraint{Arg: 0, Allowed: interval.Single(-1, 255)}
	}
	sums := []Summary{
		{Name: "fread", Constraints: []Constraint{
			NotNullConstraint{Arg: 0},
			NotNullConstraint{Arg: 3},
		}},
		{Name: "fwrite", Constraints: []Constraint{
			NotNullConstraint{Arg: 0},
			NotNullConstraint{Arg: 3},
		}},
	}
	for _, name := range []string{
		"isalnum", "isalpha", "isdigit", "islower", "isupper",
		"isspace", "ispunct", "isprint", "tolower", "toupper",
	} {
		sums = append(sums, Summary{Name: name, Constraints: []Constraint{ctypeArg()}})
	}
	return sums
}
