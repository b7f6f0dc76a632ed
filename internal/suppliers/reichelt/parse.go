package reichelt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/suppliers"
)

// parseProduct extracts a candidate from a product page.
func (r *Reichelt) parseProduct(page *goquery.Document, sku, link string) (*suppliers.Candidate, error) {
	description := strings.TrimSpace(page.Find("#av_articleheader span[itemprop=name]").First().Text())
	if description == "" {
		return nil, &errors.ParseError{Format: "html", Source: link, Message: "missing product header"}
	}

	imageURL := ""
	if src, ok := page.Find("#av_bildbox img").First().Attr("src"); ok {
		// Gallery images are served through a resizing proxy; rewrite to
		// the full-size original.
		imageURL = imageResizeURL.ReplaceAllString(src, "/images/")
	}

	datasheetURL := ""
	if href, ok := page.Find("#av_datasheetview .av_datasheet a").First().Attr("href"); ok {
		datasheetURL = absoluteURL(r.baseURL, href)
	}

	if status, ok := page.Find("p.availability span").First().Attr("class"); ok {
		if !knownAvailability[strings.Fields(status)[0]] {
			r.log.Warn().Str("status", status).Str("link", link).
				Msg("unknown availability status")
		}
	}

	var categoryPath []string
	page.Find("ol#breadcrumb li[itemprop=itemListElement]").Each(func(i int, sel *goquery.Selection) {
		if i == 0 {
			return
		}
		if name := strings.TrimSpace(sel.Find("a").Text()); name != "" {
			categoryPath = append(categoryPath, name)
		}
	})

	parameters := map[string]string{}
	page.Find("#av_props_inline ul.clearfix").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find("li.av_propname").Text())
		value := strings.TrimSpace(sel.Find("li.av_propvalue").Text())
		if name != "" && value != "" {
			parameters[name] = value
		}
	})

	manufacturer := parameters["Manufacturer"]
	if manufacturer == "" {
		manufacturer = "Reichelt"
	}

	mpn := parameters["Factory number"]
	if mpn == "" {
		if content, ok := page.Find("meta[itemprop=productID]").Attr("content"); ok {
			mpn = strings.ReplaceAll(content, " ", "")
			mpn = strings.TrimPrefix(mpn, "mpn:")
		}
	}

	priceBreaks := map[int]float64{}
	if content, ok := page.Find("meta[itemprop=price]").Attr("content"); ok {
		if price, err := strconv.ParseFloat(strings.ReplaceAll(content, ",", ""), 64); err == nil {
			priceBreaks[1] = price
		}
	}
	page.Find("#av_price_discount table td").Each(func(i int, sel *goquery.Selection) {
		if i == 0 {
			return
		}
		fields := strings.Fields(sel.Text())
		if len(fields) < 2 {
			return
		}
		quantity, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return
		}
		price, err := moneyToFloat(strings.Join(fields[1:], " "))
		if err != nil {
			return
		}
		priceBreaks[int(quantity)] = price
	})

	currency := ""
	if content, ok := page.Find("meta[itemprop=priceCurrency]").Attr("content"); ok {
		currency = content
	}

	return &suppliers.Candidate{
		Description:  description,
		ImageURL:     imageURL,
		DatasheetURL: datasheetURL,
		SupplierLink: link,
		SKU:          strings.ToUpper(sku),
		Manufacturer: manufacturer,
		MPN:          mpn,
		CategoryPath: categoryPath,
		Parameters:   parameters,
		PriceBreaks:  priceBreaks,
		Currency:     currency,
	}, nil
}

var (
	moneyCleanup = regexp.MustCompile(`[^\d,.\-]`)
	moneySplit   = regexp.MustCompile(`(.*)[.,](\d+)`)
	moneyDigits  = regexp.MustCompile(`[^\d\-]`)
)

// moneyToFloat parses a localized money string such as "1.234,56 €" into a
// float, treating the last separator as the decimal point.
func moneyToFloat(money string) (float64, error) {
	cleaned := strings.TrimSpace(moneyCleanup.ReplaceAllString(money, ""))
	match := moneySplit.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, &errors.ParseError{Format: "money", Source: money, Message: "no decimal separator"}
	}
	whole := moneyDigits.ReplaceAllString(match[1], "")
	fraction := moneyDigits.ReplaceAllString(match[2], "")
	return strconv.ParseFloat(whole+"."+fraction, 64)
}

// absoluteURL joins a possibly relative href onto the shop's base URL.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
