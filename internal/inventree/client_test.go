package inventree

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partsync/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "test-token")
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	})

	_, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token test-token", gotAuth)
}

func TestSupplierPartBySKUExactMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RC0402-100K", r.URL.Query().Get("SKU"))
		// The filter matches substrings; only the exact SKU must be taken.
		fmt.Fprint(w, `[
			{"pk": 7, "part": 1, "SKU": "RC0402-100K-EXT"},
			{"pk": 8, "part": 1, "SKU": "RC0402-100K"}
		]`)
	})

	sp, err := client.SupplierPartBySKU(context.Background(), "RC0402-100K")
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, 8, sp.ID)
}

func TestSupplierPartBySKUMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	sp, err := client.SupplierPartBySKU(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, sp)
}

func TestPaginatedListIsFollowed(t *testing.T) {
	var server *httptest.Server
	calls := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"count": 3, "next": null, "results": [{"pk": 3, "name": "Capacitors"}]}`)
			return
		}
		fmt.Fprintf(w, `{"count": 3, "next": %q, "results": [
			{"pk": 1, "name": "Electronics"},
			{"pk": 2, "name": "Resistors"}
		]}`, server.URL+apiCategory+"?page=2")
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, "test-token")

	categories, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, categories, 3)
	assert.Equal(t, "Capacitors", categories[2].Name)
}

func TestErrorResponseCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"name": "part with this name already exists"}`)
	})

	_, err := client.CreatePart(context.Background(), 1, map[string]any{"name": "R1"})
	require.Error(t, err)

	apiErr, ok := errors.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail(), "already exists")
}

func TestPartNotFoundIsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail": "Not found."}`)
	})

	part, err := client.Part(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, part)
}

func TestCreatePartSetsCategory(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{"pk": 11, "category": 3, "name": "R1"}`)
	})

	part, err := client.CreatePart(context.Background(), 3, map[string]any{"name": "R1"})
	require.NoError(t, err)
	assert.Equal(t, 11, part.ID)
	assert.Equal(t, 3, part.CategoryID)
	assert.Equal(t, float64(3), body["category"])
	assert.Equal(t, "R1", body["name"])
}

func TestPriceBreaksParseDecimalStrings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9", r.URL.Query().Get("part"))
		fmt.Fprint(w, `[{"pk": 1, "part": 9, "quantity": 10.0, "price": "0.0500", "price_currency": "EUR"}]`)
	})

	breaks, err := client.PriceBreaks(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, breaks, 1)
	assert.Equal(t, 10, breaks[0].Quantity)
	assert.Equal(t, 0.05, breaks[0].Price)
	assert.Equal(t, "EUR", breaks[0].Currency)
}

func TestLinkAttachment(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"pk": 1}`)
	})

	err := client.LinkAttachment(context.Background(), 5, "https://docs.example.com/a.pdf", "datasheet")
	require.NoError(t, err)
	assert.Equal(t, "part", body["model_type"])
	assert.Equal(t, float64(5), body["model_id"])
	assert.Equal(t, "datasheet", body["comment"])
}
