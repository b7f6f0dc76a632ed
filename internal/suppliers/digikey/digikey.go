// Package digikey adapts the Digi-Key product search API to the supplier
// contract. Searches try an exact product-number lookup first and fall
// back to keyword search, filtering results down to manufacturer part
// numbers that actually match the term.
package digikey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/logging"
	"github.com/partforge/partsync/pkg/suppliers"
)

const (
	defaultBaseURL = "https://api.digikey.com"
	defaultTimeout = 30 * time.Second

	productDetailsPath = "/products/v4/search/%s/productdetails"
	keywordSearchPath  = "/products/v4/search/keyword"

	keywordRecordCount = 10
)

func init() {
	suppliers.Register(New())
}

// DigiKey is the Digi-Key adapter.
type DigiKey struct {
	baseURL  string
	clientID string
	token    string
	currency string
	language string
	site     string
	http     *http.Client
	log      zerolog.Logger
}

// Option configures the adapter.
type Option func(*DigiKey)

// WithBaseURL points the adapter at a different API host, used in tests.
func WithBaseURL(u string) Option {
	return func(d *DigiKey) { d.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(d *DigiKey) { d.http = h }
}

// New creates an unconfigured adapter. Configure must supply credentials
// before the first search.
func New(opts ...Option) *DigiKey {
	d := &DigiKey{
		baseURL:  defaultBaseURL,
		currency: "EUR",
		language: "en",
		site:     "DE",
		http:     &http.Client{Timeout: defaultTimeout},
		log:      *logging.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements suppliers.Supplier.
func (d *DigiKey) Name() string { return "DigiKey" }

// Configure implements suppliers.Configurable.
func (d *DigiKey) Configure(settings map[string]string) error {
	d.clientID = settings["client_id"]
	d.token = settings["access_token"]
	if d.clientID == "" || d.token == "" {
		return &errors.ConfigError{
			Component: "suppliers.digikey",
			Message:   "client_id and access_token are required",
		}
	}
	if v := settings["currency"]; v != "" {
		d.currency = v
	}
	if v := settings["language"]; v != "" {
		d.language = v
	}
	if v := settings["site"]; v != "" {
		d.site = v
	}
	return nil
}

// Search implements suppliers.Supplier.
func (d *DigiKey) Search(ctx context.Context, term string) ([]*suppliers.Candidate, int, error) {
	// Exact product-number lookup first; a hit short-circuits the keyword
	// search entirely.
	product, err := d.productDetails(ctx, term)
	if err != nil {
		return nil, 0, err
	}
	if product != nil {
		return []*suppliers.Candidate{d.candidate(product)}, 1, nil
	}

	products, total, err := d.keywordSearch(ctx, term)
	if err != nil {
		return nil, 0, err
	}

	// Keep products whose MPN starts with the term; collapse to a single
	// result on an exact MPN match.
	lowered := strings.ToLower(term)
	filtered := products[:0]
	for _, p := range products {
		if strings.HasPrefix(strings.ToLower(p.ManufacturerProductNumber), lowered) {
			filtered = append(filtered, p)
		}
	}

	var exact []productResponse
	for _, p := range filtered {
		if strings.ToLower(p.ManufacturerProductNumber) == lowered {
			exact = append(exact, p)
		}
	}
	if len(exact) == 1 {
		return []*suppliers.Candidate{d.candidate(&exact[0])}, 1, nil
	}

	candidates := make([]*suppliers.Candidate, len(filtered))
	for i := range filtered {
		candidates[i] = d.candidate(&filtered[i])
	}
	if total < len(candidates) {
		total = len(candidates)
	}
	return candidates, total, nil
}

func (d *DigiKey) productDetails(ctx context.Context, term string) (*productResponse, error) {
	path := fmt.Sprintf(productDetailsPath, url.PathEscape(term))
	var details struct {
		Product *productResponse `json:"Product"`
	}
	err := d.request(ctx, http.MethodGet, path, nil, &details)
	if err != nil {
		if apiErr, ok := errors.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return details.Product, nil
}

func (d *DigiKey) keywordSearch(ctx context.Context, term string) ([]productResponse, int, error) {
	body := map[string]any{
		"Keywords": term,
		"Limit":    keywordRecordCount,
	}
	var result struct {
		Products      []productResponse `json:"Products"`
		ProductsCount int               `json:"ProductsCount"`
	}
	if err := d.request(ctx, http.MethodPost, keywordSearchPath, body, &result); err != nil {
		return nil, 0, err
	}
	return result.Products, result.ProductsCount, nil
}

func (d *DigiKey) request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", "request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("X-DIGIKEY-Client-Id", d.clientID)
	req.Header.Set("X-DIGIKEY-Locale-Currency", d.currency)
	req.Header.Set("X-DIGIKEY-Locale-Language", d.language)
	req.Header.Set("X-DIGIKEY-Locale-Site", d.site)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewAPIError("digikey", path, resp.StatusCode, payload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

func (d *DigiKey) candidate(p *productResponse) *suppliers.Candidate {
	parameters := make(map[string]string, len(p.Parameters))
	for _, parameter := range p.Parameters {
		parameters[parameter.ParameterText] = parameter.ValueText
	}

	pricing := p.standardPricing()
	priceBreaks := make(map[int]float64, len(pricing))
	for _, pb := range pricing {
		priceBreaks[pb.BreakQuantity] = pb.UnitPrice
	}

	var categoryPath []string
	if p.Category.Name != "" {
		categoryPath = append(categoryPath, p.Category.Name)
	}
	child := p.Category.ChildCategories
	for len(child) > 0 {
		categoryPath = append(categoryPath, child[0].Name)
		child = child[0].ChildCategories
	}

	candidate := &suppliers.Candidate{
		Description:       p.Description.ProductDescription,
		ImageURL:          p.PhotoURL,
		DatasheetURL:      p.DatasheetURL,
		SupplierLink:      p.ProductURL,
		SKU:               p.sku(),
		Manufacturer:      p.Manufacturer.Name,
		MPN:               p.ManufacturerProductNumber,
		QuantityAvailable: float64(p.QuantityAvailable + p.ManufacturerPublicQuantity),
		Packaging:         p.packaging(),
		CategoryPath:      categoryPath,
		Parameters:        parameters,
		PriceBreaks:       priceBreaks,
		Currency:          d.currency,
	}

	// The keyword endpoint omits media links; the product page carries the
	// manufacturer link, fetched only if the candidate is actually taken.
	if candidate.DatasheetURL == "" || candidate.ManufacturerLink == "" {
		sku := candidate.SKU
		candidate.FinalizeFunc = func(ctx context.Context, c *suppliers.Candidate) error {
			return d.finalize(ctx, c, sku)
		}
	}
	return candidate
}

// finalize fills fields the keyword search response leaves empty from the
// full product details.
func (d *DigiKey) finalize(ctx context.Context, c *suppliers.Candidate, sku string) error {
	product, err := d.productDetails(ctx, sku)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	if c.DatasheetURL == "" {
		c.DatasheetURL = product.DatasheetURL
	}
	if c.ManufacturerLink == "" {
		for _, media := range product.MediaLinks {
			if media.MediaType == "Manufacturer Product Page" {
				c.ManufacturerLink = media.URL
				break
			}
		}
	}
	return nil
}
