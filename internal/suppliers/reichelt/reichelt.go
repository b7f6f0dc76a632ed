// Package reichelt adapts the Reichelt web shop to the supplier contract.
// There is no public API; candidates are scraped from product pages with
// goquery. Search terms that look like a Reichelt order number skip the
// search page and load the product page directly.
package reichelt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/logging"
	"github.com/partforge/partsync/pkg/suppliers"
)

const (
	defaultBaseURL    = "https://www.reichelt.com/"
	defaultTimeout    = 30 * time.Second
	defaultMaxResults = 10

	localeChangePath = "index.html?ACTION=12&PAGE=46"
	searchPath       = "index.html?ACTION=446&q="
)

var (
	skuRegex        = regexp.MustCompile(`^[pP]\d+$`)
	productURLRegex = regexp.MustCompile(`([pP]\d+)\.html[^.]*$`)
	imageResizeURL  = regexp.MustCompile(`/resize/[^/]+/[^/]+/`)
)

// locationCodes maps supported shop locations to the form codes the locale
// switcher expects.
var locationCodes = map[string]int{
	"AT": 458,
	"FR": 443,
	"DE": 445,
	"IT": 446,
	"NL": 662,
	"PL": 470,
	"CH": 459,
	"US": 550,
}

// knownAvailability lists the stock status classes the shop renders.
// The shop never exposes concrete quantities, so candidates carry none.
var knownAvailability = map[string]bool{
	"status_1": true, "status_2": true, "status_3": true, "status_4": true,
	"status_5": true, "status_6": true, "status_7": true, "status_8": true,
}

func init() {
	suppliers.Register(New())
}

// Reichelt is the Reichelt adapter.
type Reichelt struct {
	baseURL    string
	language   string
	location   string
	maxResults int
	http       *http.Client
	log        zerolog.Logger

	localeOnce sync.Once
}

// Option configures the adapter.
type Option func(*Reichelt)

// WithBaseURL points the adapter at a different host, used in tests.
func WithBaseURL(u string) Option {
	return func(r *Reichelt) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		r.baseURL = u
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(r *Reichelt) { r.http = h }
}

// New creates the adapter with default locales.
func New(opts ...Option) *Reichelt {
	jar, _ := cookiejar.New(nil)
	r := &Reichelt{
		baseURL:    defaultBaseURL,
		language:   "EN",
		location:   "DE",
		maxResults: defaultMaxResults,
		http:       &http.Client{Timeout: defaultTimeout, Jar: jar},
		log:        *logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements suppliers.Supplier.
func (r *Reichelt) Name() string { return "Reichelt" }

// Configure implements suppliers.Configurable.
func (r *Reichelt) Configure(settings map[string]string) error {
	if v := settings["location"]; v != "" {
		if _, ok := locationCodes[strings.ToUpper(v)]; !ok {
			return &errors.ConfigError{
				Component: "suppliers.reichelt.location",
				Message:   fmt.Sprintf("unsupported location %q", v),
			}
		}
		r.location = strings.ToUpper(v)
	}
	if v := settings["language"]; v != "" {
		r.language = strings.ToUpper(v)
	}
	if v := settings["max_results"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return &errors.ConfigError{
				Component: "suppliers.reichelt.max_results",
				Message:   fmt.Sprintf("invalid value %q", v),
			}
		}
		r.maxResults = n
	}
	return nil
}

func (r *Reichelt) localizedURL() string {
	return r.baseURL + strings.ToLower(r.location) + "/" + strings.ToLower(r.language) + "/"
}

// Search implements suppliers.Supplier.
func (r *Reichelt) Search(ctx context.Context, term string) ([]*suppliers.Candidate, int, error) {
	r.localeOnce.Do(func() { r.setupLocale(ctx) })

	// Order numbers resolve straight to the product page.
	if skuRegex.MatchString(term) {
		link := r.localizedURL() + "-" + strings.ToLower(term) + ".html"
		page, err := r.fetch(ctx, link)
		if err == nil && page != nil {
			candidate, perr := r.parseProduct(page, strings.ToUpper(term), link)
			if perr == nil {
				return []*suppliers.Candidate{candidate}, 1, nil
			}
		}
	}

	searchURL := r.baseURL + searchPath + url.QueryEscape(term)
	page, err := r.fetch(ctx, searchURL)
	if err != nil {
		return nil, 0, err
	}
	if page == nil {
		return nil, 0, nil
	}

	results := page.Find("div.al_gallery_article")
	total := results.Length()

	var candidates []*suppliers.Candidate
	var fetchErr error
	results.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(candidates) >= r.maxResults {
			return false
		}
		href, ok := sel.Find("a[itemprop=url]").Attr("href")
		if !ok {
			return true
		}
		match := productURLRegex.FindStringSubmatch(href)
		if match == nil {
			return true
		}
		sku := strings.ToUpper(match[1])

		link := r.localizedURL() + "-" + strings.ToLower(sku) + ".html"
		product, err := r.fetch(ctx, link)
		if err != nil {
			fetchErr = err
			return false
		}
		if product == nil {
			return true
		}

		candidate, err := r.parseProduct(product, sku, link)
		if err != nil {
			r.log.Warn().Err(err).Str("link", link).Msg("failed to parse product page")
			return true
		}

		// The shop's search is broad; with several hits, keep only listings
		// whose MPN relates to the term.
		if total > 1 && !strings.Contains(strings.ToLower(candidate.MPN), strings.ToLower(term)) {
			return true
		}
		candidates = append(candidates, candidate)
		return true
	})
	if fetchErr != nil {
		return nil, 0, fetchErr
	}

	// A single exact SKU or MPN match wins outright.
	var exact []*suppliers.Candidate
	for _, c := range candidates {
		if strings.EqualFold(c.SKU, term) || strings.EqualFold(c.MPN, term) {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		return exact, 1, nil
	}

	if total <= r.maxResults {
		total = len(candidates)
	}
	return candidates, total, nil
}

// fetch loads a page, returning (nil, nil) on 404 so missing products are
// not errors.
func (r *Reichelt) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAPIError("reichelt", pageURL, resp.StatusCode, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.WrapParse("html", pageURL, err)
	}
	return doc, nil
}

// setupLocale switches the session to the configured country and language
// via the shop's locale form. Failures are logged, not fatal: the shop
// then serves its defaults.
func (r *Reichelt) setupLocale(ctx context.Context) {
	page, err := r.fetch(ctx, r.baseURL+localeChangePath)
	if err != nil || page == nil {
		r.log.Warn().Msg("failed to set shop locale")
		return
	}
	action, ok := page.Find("form[name=contentform]").Attr("action")
	if !ok {
		r.log.Warn().Msg("failed to set shop locale")
		return
	}

	form := url.Values{
		"CCOUNTRY": {strconv.Itoa(locationCodes[r.location])},
		"LANGUAGE": {r.language},
		"CTYPE":    {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(form.Encode()))
	if err != nil {
		r.log.Warn().Msg("failed to set shop locale")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := r.http.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		r.log.Warn().Msg("failed to set shop locale")
		return
	}
	resp.Body.Close() //nolint:errcheck
}
