// Package suppliers defines the contract every supplier backend adapter
// must satisfy and the normalized candidate record adapters produce.
// Adapters live under internal/suppliers and register themselves with the
// Registry in their init functions; the import engine only sees the
// Supplier interface and Candidate values.
package suppliers

import (
	"context"
	"sync"
)

const (
	// maxLinkLength is the repository's limit for link fields.
	maxLinkLength = 200
	// maxAvailable caps the supplier-reported available quantity.
	maxAvailable = 9999999.0
)

// Candidate is a normalized supplier record for one catalog listing.
// Some fields (typically the datasheet URL) require a second network fetch;
// the fetch is deferred into FinalizeFunc and triggered exactly once via
// Finalize before any create or update that needs them.
type Candidate struct {
	Description      string
	ImageURL         string
	DatasheetURL     string
	SupplierLink     string
	SKU              string
	Manufacturer     string
	ManufacturerLink string
	MPN              string

	QuantityAvailable float64
	Packaging         string

	// CategoryPath is the supplier's category breadcrumb, root to leaf.
	CategoryPath []string

	// Parameters maps raw supplier parameter names to raw values.
	Parameters map[string]string

	// PriceBreaks maps break quantity to unit price in Currency.
	PriceBreaks map[int]float64
	Currency    string

	// FinalizeFunc populates lazy fields. Optional.
	FinalizeFunc func(ctx context.Context, c *Candidate) error

	finalizeOnce sync.Once
	finalizeErr  error
}

// Finalize runs the adapter's lazy completion step exactly once and caches
// its outcome. A nil FinalizeFunc finalizes trivially.
func (c *Candidate) Finalize(ctx context.Context) error {
	c.finalizeOnce.Do(func() {
		if c.FinalizeFunc != nil {
			c.finalizeErr = c.FinalizeFunc(ctx, c)
		}
	})
	return c.finalizeErr
}

// PartData returns the part fields derived from this candidate.
func (c *Candidate) PartData() map[string]any {
	return map[string]any{
		"name":         c.MPN,
		"description":  c.Description,
		"link":         truncate(c.ManufacturerLink, maxLinkLength),
		"active":       true,
		"component":    true,
		"purchaseable": true,
	}
}

// ManufacturerPartData returns the manufacturer-part fields derived from
// this candidate.
func (c *Candidate) ManufacturerPartData() map[string]any {
	return map[string]any{
		"MPN":         c.MPN,
		"description": c.Description,
		"link":        truncate(c.ManufacturerLink, maxLinkLength),
	}
}

// SupplierPartData returns the supplier-part fields derived from this
// candidate. The available quantity is only reported when known.
func (c *Candidate) SupplierPartData() map[string]any {
	data := map[string]any{
		"description": c.Description,
		"link":        truncate(c.SupplierLink, maxLinkLength),
		"packaging":   c.Packaging,
	}
	if c.QuantityAvailable > 0 {
		available := c.QuantityAvailable
		if available > maxAvailable {
			available = maxAvailable
		}
		data["available"] = available
	}
	return data
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
