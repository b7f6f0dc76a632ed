package digikey

// productResponse is the shared product shape of the details and keyword
// search endpoints. Fields missing from one endpoint simply stay zero.
type productResponse struct {
	Description struct {
		ProductDescription string `json:"ProductDescription"`
	} `json:"Description"`
	Manufacturer struct {
		Name string `json:"Name"`
	} `json:"Manufacturer"`
	ManufacturerProductNumber  string `json:"ManufacturerProductNumber"`
	ProductURL                 string `json:"ProductUrl"`
	PhotoURL                   string `json:"PhotoUrl"`
	DatasheetURL               string `json:"DatasheetUrl"`
	QuantityAvailable          int    `json:"QuantityAvailable"`
	ManufacturerPublicQuantity int    `json:"ManufacturerPublicQuantity"`

	Category struct {
		Name            string         `json:"Name"`
		ChildCategories []categoryNode `json:"ChildCategories"`
	} `json:"Category"`

	Parameters []struct {
		ParameterText string `json:"ParameterText"`
		ValueText     string `json:"ValueText"`
	} `json:"Parameters"`

	ProductVariations []struct {
		DigiKeyProductNumber string `json:"DigiKeyProductNumber"`
		PackageType          struct {
			Name string `json:"Name"`
		} `json:"PackageType"`
		StandardPricing []priceBreak `json:"StandardPricing"`
	} `json:"ProductVariations"`

	MediaLinks []struct {
		MediaType string `json:"MediaType"`
		URL       string `json:"Url"`
	} `json:"MediaLinks"`
}

type categoryNode struct {
	Name            string         `json:"Name"`
	ChildCategories []categoryNode `json:"ChildCategories"`
}

type priceBreak struct {
	BreakQuantity int     `json:"BreakQuantity"`
	UnitPrice     float64 `json:"UnitPrice"`
}

// sku returns the Digi-Key part number of the first product variation.
func (p *productResponse) sku() string {
	if len(p.ProductVariations) == 0 {
		return ""
	}
	return p.ProductVariations[0].DigiKeyProductNumber
}

// packaging returns the package type of the first product variation.
func (p *productResponse) packaging() string {
	if len(p.ProductVariations) == 0 {
		return ""
	}
	return p.ProductVariations[0].PackageType.Name
}

// StandardPricing flattens the first variation's price breaks.
func (p *productResponse) standardPricing() []priceBreak {
	if len(p.ProductVariations) == 0 {
		return nil
	}
	return p.ProductVariations[0].StandardPricing
}
