package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("supplier part", "296-1234-ND")
	assert.EqualError(t, err, `supplier part "296-1234-ND" not found`)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", err)))
}

func TestAPIErrorDetailJSONBody(t *testing.T) {
	err := NewAPIError("inventree", "/api/part/", 400, []byte(`{"name":["This field is required."],"category":"invalid"}`))
	detail := err.Detail()
	assert.Contains(t, detail, "name: [This field is required.]")
	assert.Contains(t, detail, "category: invalid")
}

func TestAPIErrorDetailFallback(t *testing.T) {
	err := NewAPIError("inventree", "/api/part/", 502, []byte("<html>bad gateway</html>"))
	assert.Equal(t, "/api/part/ returned status 502", err.Detail())

	empty := &APIError{Service: "inventree"}
	assert.Equal(t, "unknown API error", empty.Detail())
}

func TestAPIErrorIsSupplierUnavailable(t *testing.T) {
	err := NewAPIError("digikey", "/search", 503, nil)
	assert.ErrorIs(t, err, ErrSupplierUnavailable)

	clientErr := NewAPIError("digikey", "/search", 404, nil)
	assert.NotErrorIs(t, clientErr, ErrSupplierUnavailable)
}

func TestIsAPIError(t *testing.T) {
	inner := NewAPIError("inventree", "/api/company/", 400, []byte(`{"name":"taken"}`))
	wrapped := fmt.Errorf("creating manufacturer: %w", inner)

	got, ok := IsAPIError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 400, got.StatusCode)

	_, ok = IsAPIError(New("plain"))
	assert.False(t, ok)
}

func TestMatchError(t *testing.T) {
	err := NewMatchError("category", "Resistors / Chip Resistor")
	assert.EqualError(t, err, `failed to match category for "Resistors / Chip Resistor"`)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("categories", "file missing", nil)
	assert.EqualError(t, err, "configuration error in categories: file missing")
}
