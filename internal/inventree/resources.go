package inventree

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/inventory"
)

const (
	apiPart             = "/api/part/"
	apiCategory         = "/api/part/category/"
	apiParameter        = "/api/part/parameter/"
	apiTemplate         = "/api/part/parameter/template/"
	apiCompany          = "/api/company/"
	apiSupplierPart     = "/api/company/part/"
	apiManufacturerPart = "/api/company/part/manufacturer/"
	apiPriceBreak       = "/api/company/price-break/"
	apiAttachment       = "/api/attachment/"
	apiStock            = "/api/stock/"
)

type partResource struct {
	PK          int    `json:"pk"`
	Category    int    `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Image       string `json:"image"`
}

func (r partResource) toPart() *inventory.Part {
	return &inventory.Part{
		ID:          r.PK,
		CategoryID:  r.Category,
		Name:        r.Name,
		Description: r.Description,
		Link:        r.Link,
		ImageURL:    r.Image,
	}
}

type companyResource struct {
	PK      int    `json:"pk"`
	Name    string `json:"name"`
	Website string `json:"website"`
}

type manufacturerPartResource struct {
	PK           int    `json:"pk"`
	Part         int    `json:"part"`
	Manufacturer int    `json:"manufacturer"`
	MPN          string `json:"MPN"`
}

func (r manufacturerPartResource) toManufacturerPart() *inventory.ManufacturerPart {
	return &inventory.ManufacturerPart{
		ID:             r.PK,
		PartID:         r.Part,
		ManufacturerID: r.Manufacturer,
		MPN:            r.MPN,
	}
}

type supplierPartResource struct {
	PK               int    `json:"pk"`
	Part             int    `json:"part"`
	ManufacturerPart int    `json:"manufacturer_part"`
	Supplier         int    `json:"supplier"`
	SKU              string `json:"SKU"`
}

func (r supplierPartResource) toSupplierPart() *inventory.SupplierPart {
	return &inventory.SupplierPart{
		ID:                 r.PK,
		PartID:             r.Part,
		ManufacturerPartID: r.ManufacturerPart,
		SupplierID:         r.Supplier,
		SKU:                r.SKU,
	}
}

type parameterResource struct {
	PK             int `json:"pk"`
	Part           int `json:"part"`
	Template       int `json:"template"`
	TemplateDetail struct {
		Name string `json:"name"`
	} `json:"template_detail"`
	Data string `json:"data"`
}

type templateResource struct {
	PK    int    `json:"pk"`
	Name  string `json:"name"`
	Units string `json:"units"`
}

type priceBreakResource struct {
	PK       int     `json:"pk"`
	Part     int     `json:"part"`
	Quantity float64 `json:"quantity"`
	Price    string  `json:"price"`
	Currency string  `json:"price_currency"`
}

type attachmentResource struct {
	PK      int    `json:"pk"`
	Comment string `json:"comment"`
	Link    string `json:"link"`
}

type categoryResource struct {
	PK         int    `json:"pk"`
	Name       string `json:"name"`
	PathString string `json:"pathstring"`
	Parent     int    `json:"parent"`
}

// SupplierPartBySKU implements inventory.Client.
func (c *Client) SupplierPartBySKU(ctx context.Context, sku string) (*inventory.SupplierPart, error) {
	var results []supplierPartResource
	if err := c.list(ctx, apiSupplierPart, url.Values{"SKU": {sku}}, &results); err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.SKU == sku {
			return r.toSupplierPart(), nil
		}
	}
	return nil, nil
}

// ManufacturerPartByMPN implements inventory.Client.
func (c *Client) ManufacturerPartByMPN(ctx context.Context, mpn string) (*inventory.ManufacturerPart, error) {
	var results []manufacturerPartResource
	if err := c.list(ctx, apiManufacturerPart, url.Values{"MPN": {mpn}}, &results); err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.MPN == mpn {
			return r.toManufacturerPart(), nil
		}
	}
	return nil, nil
}

// ManufacturerPart implements inventory.Client.
func (c *Client) ManufacturerPart(ctx context.Context, id int) (*inventory.ManufacturerPart, error) {
	var r manufacturerPartResource
	err := c.get(ctx, fmt.Sprintf("%s%d/", apiManufacturerPart, id), nil, &r)
	if isNotFoundStatus(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toManufacturerPart(), nil
}

// Part implements inventory.Client.
func (c *Client) Part(ctx context.Context, id int) (*inventory.Part, error) {
	var r partResource
	err := c.get(ctx, fmt.Sprintf("%s%d/", apiPart, id), nil, &r)
	if isNotFoundStatus(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toPart(), nil
}

// PartByName implements inventory.Client.
func (c *Client) PartByName(ctx context.Context, name string) (*inventory.Part, error) {
	var results []partResource
	if err := c.list(ctx, apiPart, url.Values{"name": {name}}, &results); err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Name == name {
			return r.toPart(), nil
		}
	}
	return nil, nil
}

// GetOrCreateManufacturer implements inventory.Client.
func (c *Client) GetOrCreateManufacturer(ctx context.Context, name, link string) (*inventory.Manufacturer, error) {
	r, err := c.getOrCreateCompany(ctx, name, map[string]any{
		"name":            name,
		"website":         link,
		"is_manufacturer": true,
		"is_supplier":     false,
	}, url.Values{"name": {name}, "is_manufacturer": {"true"}})
	if err != nil {
		return nil, err
	}
	return &inventory.Manufacturer{ID: r.PK, Name: r.Name, Link: r.Website}, nil
}

// GetOrCreateSupplier implements inventory.Client.
func (c *Client) GetOrCreateSupplier(ctx context.Context, name string) (*inventory.Supplier, error) {
	r, err := c.getOrCreateCompany(ctx, name, map[string]any{
		"name":            name,
		"is_manufacturer": false,
		"is_supplier":     true,
	}, url.Values{"name": {name}, "is_supplier": {"true"}})
	if err != nil {
		return nil, err
	}
	return &inventory.Supplier{ID: r.PK, Name: r.Name}, nil
}

func (c *Client) getOrCreateCompany(ctx context.Context, name string, body map[string]any, query url.Values) (*companyResource, error) {
	var results []companyResource
	if err := c.list(ctx, apiCompany, query, &results); err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Name == name {
			return &results[i], nil
		}
	}
	var created companyResource
	if err := c.post(ctx, apiCompany, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreatePart implements inventory.Client.
func (c *Client) CreatePart(ctx context.Context, categoryID int, data inventory.Patch) (*inventory.Part, error) {
	body := clonePatch(data)
	body["category"] = categoryID
	var r partResource
	if err := c.post(ctx, apiPart, body, &r); err != nil {
		return nil, err
	}
	return r.toPart(), nil
}

// UpdatePart implements inventory.Client.
func (c *Client) UpdatePart(ctx context.Context, id int, data inventory.Patch) error {
	return c.patch(ctx, fmt.Sprintf("%s%d/", apiPart, id), data, nil)
}

// CreateManufacturerPart implements inventory.Client.
func (c *Client) CreateManufacturerPart(ctx context.Context, data inventory.Patch) (*inventory.ManufacturerPart, error) {
	var r manufacturerPartResource
	if err := c.post(ctx, apiManufacturerPart, data, &r); err != nil {
		return nil, err
	}
	return r.toManufacturerPart(), nil
}

// UpdateManufacturerPart implements inventory.Client.
func (c *Client) UpdateManufacturerPart(ctx context.Context, id int, data inventory.Patch) error {
	return c.patch(ctx, fmt.Sprintf("%s%d/", apiManufacturerPart, id), data, nil)
}

// CreateSupplierPart implements inventory.Client.
func (c *Client) CreateSupplierPart(ctx context.Context, data inventory.Patch) (*inventory.SupplierPart, error) {
	var r supplierPartResource
	if err := c.post(ctx, apiSupplierPart, data, &r); err != nil {
		return nil, err
	}
	return r.toSupplierPart(), nil
}

// UpdateSupplierPart implements inventory.Client.
func (c *Client) UpdateSupplierPart(ctx context.Context, id int, data inventory.Patch) error {
	return c.patch(ctx, fmt.Sprintf("%s%d/", apiSupplierPart, id), data, nil)
}

// Parameters implements inventory.Client.
func (c *Client) Parameters(ctx context.Context, partID int) ([]inventory.Parameter, error) {
	var results []parameterResource
	if err := c.list(ctx, apiParameter, url.Values{"part": {strconv.Itoa(partID)}}, &results); err != nil {
		return nil, err
	}
	out := make([]inventory.Parameter, len(results))
	for i, r := range results {
		out[i] = inventory.Parameter{
			ID:           r.PK,
			PartID:       r.Part,
			TemplateID:   r.Template,
			TemplateName: r.TemplateDetail.Name,
			Value:        r.Data,
		}
	}
	return out, nil
}

// CreateParameter implements inventory.Client.
func (c *Client) CreateParameter(ctx context.Context, partID, templateID int, value string) error {
	body := map[string]any{"part": partID, "template": templateID, "data": value}
	return c.post(ctx, apiParameter, body, nil)
}

// UpdateParameter implements inventory.Client.
func (c *Client) UpdateParameter(ctx context.Context, parameterID int, value string) error {
	body := map[string]any{"data": value}
	return c.patch(ctx, fmt.Sprintf("%s%d/", apiParameter, parameterID), body, nil)
}

// ParameterTemplates implements inventory.Client.
func (c *Client) ParameterTemplates(ctx context.Context) ([]inventory.ParameterTemplate, error) {
	var results []templateResource
	if err := c.list(ctx, apiTemplate, nil, &results); err != nil {
		return nil, err
	}
	out := make([]inventory.ParameterTemplate, len(results))
	for i, r := range results {
		out[i] = inventory.ParameterTemplate{ID: r.PK, Name: r.Name, Units: r.Units}
	}
	return out, nil
}

// CreateParameterTemplate implements inventory.Client.
func (c *Client) CreateParameterTemplate(ctx context.Context, name, units string) (*inventory.ParameterTemplate, error) {
	var r templateResource
	if err := c.post(ctx, apiTemplate, map[string]any{"name": name, "units": units}, &r); err != nil {
		return nil, err
	}
	return &inventory.ParameterTemplate{ID: r.PK, Name: r.Name, Units: r.Units}, nil
}

// PriceBreaks implements inventory.Client.
func (c *Client) PriceBreaks(ctx context.Context, supplierPartID int) ([]inventory.PriceBreak, error) {
	var results []priceBreakResource
	if err := c.list(ctx, apiPriceBreak, url.Values{"part": {strconv.Itoa(supplierPartID)}}, &results); err != nil {
		return nil, err
	}
	out := make([]inventory.PriceBreak, len(results))
	for i, r := range results {
		price, err := strconv.ParseFloat(r.Price, 64)
		if err != nil {
			return nil, errors.WrapParse("decimal", "price break", err)
		}
		out[i] = inventory.PriceBreak{
			ID:             r.PK,
			SupplierPartID: r.Part,
			Quantity:       int(r.Quantity),
			Price:          price,
			Currency:       r.Currency,
		}
	}
	return out, nil
}

// CreatePriceBreak implements inventory.Client.
func (c *Client) CreatePriceBreak(ctx context.Context, supplierPartID, quantity int, price float64, currency string) error {
	body := map[string]any{
		"part":           supplierPartID,
		"quantity":       quantity,
		"price":          price,
		"price_currency": currency,
	}
	return c.post(ctx, apiPriceBreak, body, nil)
}

// UpdatePriceBreak implements inventory.Client.
func (c *Client) UpdatePriceBreak(ctx context.Context, id int, price float64, currency string) error {
	body := map[string]any{"price": price, "price_currency": currency}
	return c.patch(ctx, fmt.Sprintf("%s%d/", apiPriceBreak, id), body, nil)
}

// Attachments implements inventory.Client.
func (c *Client) Attachments(ctx context.Context, partID int) ([]inventory.Attachment, error) {
	query := url.Values{"model_type": {"part"}, "model_id": {strconv.Itoa(partID)}}
	var results []attachmentResource
	if err := c.list(ctx, apiAttachment, query, &results); err != nil {
		return nil, err
	}
	out := make([]inventory.Attachment, len(results))
	for i, r := range results {
		out[i] = inventory.Attachment{ID: r.PK, PartID: partID, Comment: r.Comment, Link: r.Link}
	}
	return out, nil
}

// UploadImage implements inventory.Client. The instance downloads the
// image itself, which requires remote image download to be enabled
// server-side.
func (c *Client) UploadImage(ctx context.Context, partID int, imageURL string) error {
	body := map[string]any{"remote_image": imageURL}
	return c.patch(ctx, fmt.Sprintf("%s%d/", apiPart, partID), body, nil)
}

// UploadDatasheet implements inventory.Client by downloading the document
// and posting it as a file attachment.
func (c *Client) UploadDatasheet(ctx context.Context, partID int, datasheetURL string) error {
	return c.uploadAttachment(ctx, partID, datasheetURL, "datasheet")
}

// LinkAttachment implements inventory.Client.
func (c *Client) LinkAttachment(ctx context.Context, partID int, link, comment string) error {
	body := map[string]any{
		"model_type": "part",
		"model_id":   partID,
		"link":       link,
		"comment":    comment,
	}
	return c.post(ctx, apiAttachment, body, nil)
}

// Categories implements inventory.Client.
func (c *Client) Categories(ctx context.Context) ([]inventory.PartCategory, error) {
	var results []categoryResource
	if err := c.list(ctx, apiCategory, nil, &results); err != nil {
		return nil, err
	}
	out := make([]inventory.PartCategory, len(results))
	for i, r := range results {
		out[i] = inventory.PartCategory{ID: r.PK, Name: r.Name, PathString: r.PathString, ParentID: r.Parent}
	}
	return out, nil
}

// CreateCategory implements inventory.Client.
func (c *Client) CreateCategory(ctx context.Context, parentID int, name string) (*inventory.PartCategory, error) {
	body := map[string]any{"name": name}
	if parentID != 0 {
		body["parent"] = parentID
	}
	var r categoryResource
	if err := c.post(ctx, apiCategory, body, &r); err != nil {
		return nil, err
	}
	return &inventory.PartCategory{ID: r.PK, Name: r.Name, PathString: r.PathString, ParentID: r.Parent}, nil
}

// AddStock implements inventory.Client.
func (c *Client) AddStock(ctx context.Context, partID, locationID int, amount float64) error {
	body := map[string]any{"part": partID, "location": locationID, "quantity": amount}
	return c.post(ctx, apiStock, body, nil)
}

func clonePatch(data inventory.Patch) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	return out
}

func isNotFoundStatus(err error) bool {
	if err == nil {
		return false
	}
	apiErr, ok := errors.IsAPIError(err)
	return ok && apiErr.StatusCode == 404
}
