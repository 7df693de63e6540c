package pb

import "github.com/go-playground/validator/v10"

// Config holds the tunables spec.md §3 and §4.F expose as knobs, validated
// with go-playground/validator the way AleutianLocal's own config types are,
// rather than hand-rolled range checks.
type Config struct {
	// LearnComplements mirrors z3's pb_learn_complements: when set, an
	// antecedent literal that is not false and whose variable already has a
	// marked term in the lemma has its weight subtracted from that term's
	// coefficient, and the term is dropped once the coefficient is no longer
	// positive.
	LearnComplements bool `validate:"-"`

	// ConflictFrequency throttles how often Analyze runs the full
	// cutting-planes pass: with N > 0 the pass runs only when the
	// conflicting constraint's NumPropagations is a multiple of N, and the
	// raw conflict clause is returned otherwise. 0 disables throttling.
	ConflictFrequency int `validate:"gte=0"`

	// EnableCompilation turns the sorting-network compiler on globally; a
	// constraint can still opt out via Ineq.CompilationThreshold == 0.
	EnableCompilation bool `validate:"-"`

	// CompilationThreshold is the default per-constraint F budget
	// (spec.md §3) applied to constraints that don't set their own.
	CompilationThreshold int `validate:"gte=0"`

	// Verbose is carried in the configuration for callers; the pb package
	// does not read it and prints no trace output.
	Verbose bool `validate:"-"`
}

// DefaultConfig returns the configuration new plugins are built with.
func DefaultConfig() Config {
	return Config{
		LearnComplements:     true,
		ConflictFrequency:    0,
		EnableCompilation:    true,
		CompilationThreshold: 32,
	}
}

// Validate reports whether c's fields are within their allowed ranges.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}
