package suppliers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partsync/pkg/errors"
)

type fakeSupplier struct{ name string }

func (f *fakeSupplier) Name() string { return f.name }

func (f *fakeSupplier) Search(context.Context, string) ([]*Candidate, int, error) {
	return nil, 0, nil
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeSupplier{name: "DigiKey"})
	r.Register(&fakeSupplier{name: "Reichelt"})
	r.Register(&fakeSupplier{name: "Mouser"})

	var names []string
	for _, s := range r.List() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"DigiKey", "Reichelt", "Mouser"}, names)
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry()
	first := &fakeSupplier{name: "DigiKey"}
	r.Register(first)
	r.Register(&fakeSupplier{name: "Reichelt"})

	second := &fakeSupplier{name: "DigiKey"}
	r.Register(second)

	list := r.List()
	require.Len(t, list, 2)
	assert.Same(t, second, list[0])
}

func TestRegistryEnabled(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeSupplier{name: "DigiKey"})
	r.Register(&fakeSupplier{name: "Reichelt"})

	enabled, err := r.Enabled([]string{"Reichelt"})
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "Reichelt", enabled[0].Name())

	_, err = r.Enabled([]string{"Nexar"})
	assert.True(t, errors.IsNotFound(err))
}

func TestCandidateFinalizeOnce(t *testing.T) {
	calls := 0
	c := &Candidate{
		FinalizeFunc: func(ctx context.Context, c *Candidate) error {
			calls++
			c.DatasheetURL = "https://example.com/ds.pdf"
			return nil
		},
	}

	require.NoError(t, c.Finalize(context.Background()))
	require.NoError(t, c.Finalize(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "https://example.com/ds.pdf", c.DatasheetURL)
}

func TestCandidateFinalizeCachesError(t *testing.T) {
	calls := 0
	c := &Candidate{
		FinalizeFunc: func(context.Context, *Candidate) error {
			calls++
			return errors.New("datasheet fetch failed")
		},
	}

	assert.Error(t, c.Finalize(context.Background()))
	assert.Error(t, c.Finalize(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCandidatePartData(t *testing.T) {
	c := &Candidate{
		MPN:              "RC0603FR-0710KL",
		Description:      "RES 10K OHM 1% 1/10W 0603",
		ManufacturerLink: "https://example.com/" + strings.Repeat("x", 300),
	}
	data := c.PartData()
	assert.Equal(t, "RC0603FR-0710KL", data["name"])
	assert.Len(t, data["link"], 200)
	assert.Equal(t, true, data["active"])
}

func TestCandidateSupplierPartDataAvailabilityCap(t *testing.T) {
	c := &Candidate{QuantityAvailable: 123456789}
	assert.Equal(t, 9999999.0, c.SupplierPartData()["available"])

	none := &Candidate{}
	_, ok := none.SupplierPartData()["available"]
	assert.False(t, ok)
}
