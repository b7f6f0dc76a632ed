package suppliers

import "context"

// Supplier is the capability every backend adapter implements.
type Supplier interface {
	// Name returns the supplier's display name, which doubles as the
	// repository company name.
	Name() string

	// Search looks up a term in the supplier's catalog and returns a
	// bounded list of normalized candidates plus the true result count,
	// which may exceed len(candidates).
	Search(ctx context.Context, term string) ([]*Candidate, int, error)
}

// Configurable is implemented by adapters that take settings from the
// suppliers section of the configuration file. Configure is called once
// before the first Search.
type Configurable interface {
	Configure(settings map[string]string) error
}
