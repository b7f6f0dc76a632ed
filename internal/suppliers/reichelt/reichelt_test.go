package reichelt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><body>
<div id="av_articleheader"><span itemprop="name">ARDUINO UNO R4 MINIMA</span></div>
<div id="av_bildbox"><img src="https://cdn.example.com/resize/150/150/uno.jpg"></div>
<div id="av_datasheetview"><div class="av_datasheet"><a href="/docs/uno.pdf">Datasheet</a></div></div>
<p class="availability"><span class="status_1"></span></p>
<ol id="breadcrumb">
  <li itemprop="itemListElement"><a>Home</a></li>
  <li itemprop="itemListElement"><a>Development Boards</a></li>
  <li itemprop="itemListElement"><a>Arduino</a></li>
</ol>
<div id="av_props_inline">
  <ul class="clearfix"><li class="av_propname">Manufacturer</li><li class="av_propvalue">Arduino</li></ul>
  <ul class="clearfix"><li class="av_propname">Factory number</li><li class="av_propvalue">ABX00087</li></ul>
  <ul class="clearfix"><li class="av_propname">Interface</li><li class="av_propvalue">USB-C</li></ul>
</div>
<meta itemprop="productID" content="mpn: ABX00087">
<meta itemprop="price" content="24.90">
<meta itemprop="priceCurrency" content="EUR">
<div id="av_price_discount"><table>
  <tr><td>Qty.</td><td>10 23,50 €</td><td>25 21,90 €</td></tr>
</table></div>
</body></html>`

const searchPage = `<html><body>
<div class="al_gallery_article">
  <a itemprop="url" href="https://www.reichelt.com/de/en/arduino-uno-r4-p12345.html"></a>
</div>
</body></html>`

func newTestAdapter(t *testing.T) *Reichelt {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.RawQuery, "ACTION=12"):
			fmt.Fprint(w, `<html><body></body></html>`)
		case strings.Contains(r.URL.RawQuery, "ACTION=446"):
			fmt.Fprint(w, searchPage)
		case strings.HasSuffix(r.URL.Path, "-p12345.html"):
			fmt.Fprint(w, productPage)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return New(WithBaseURL(server.URL))
}

func TestSearchByKeyword(t *testing.T) {
	r := newTestAdapter(t)

	candidates, total, err := r.Search(context.Background(), "ABX00087")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "P12345", c.SKU)
	assert.Equal(t, "ABX00087", c.MPN)
	assert.Equal(t, "Arduino", c.Manufacturer)
	assert.Equal(t, "ARDUINO UNO R4 MINIMA", c.Description)
	assert.Equal(t, "https://cdn.example.com/images/uno.jpg", c.ImageURL)
	assert.True(t, strings.HasSuffix(c.DatasheetURL, "/docs/uno.pdf"))
	assert.Equal(t, []string{"Development Boards", "Arduino"}, c.CategoryPath)
	assert.Equal(t, "USB-C", c.Parameters["Interface"])
	assert.Equal(t, map[int]float64{1: 24.90, 10: 23.50, 25: 21.90}, c.PriceBreaks)
	assert.Equal(t, "EUR", c.Currency)
}

func TestSearchBySKUFastPath(t *testing.T) {
	r := newTestAdapter(t)

	candidates, total, err := r.Search(context.Background(), "p12345")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, candidates, 1)
	assert.Equal(t, "P12345", candidates[0].SKU)
}

func TestSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	t.Cleanup(server.Close)
	r := New(WithBaseURL(server.URL))

	candidates, total, err := r.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, candidates)
}

func TestConfigureRejectsUnknownLocation(t *testing.T) {
	err := New().Configure(map[string]string{"location": "XX"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported location")
}

func TestMoneyToFloat(t *testing.T) {
	cases := map[string]float64{
		"23,50 €":    23.50,
		"€ 1.234,56": 1234.56,
		"0.10":       0.10,
		"1,05":       1.05,
	}
	for input, want := range cases {
		got, err := moneyToFloat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}
