// Package inventorytest provides an in-memory inventory.Client for tests.
// It mimics the repository's behavior closely enough for the reconciliation
// engine: stable auto-incremented IDs, lookup-by-key semantics, and
// partial-field patches.
package inventorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/partforge/partsync/pkg/inventory"
)

// Fake is an in-memory inventory.Client.
type Fake struct {
	mu     sync.Mutex
	nextID int

	CategoriesByID    map[int]*inventory.PartCategory
	ManufacturersByID map[int]*inventory.Manufacturer
	SuppliersByID     map[int]*inventory.Supplier
	PartsByID         map[int]*inventory.Part
	MfrPartsByID      map[int]*inventory.ManufacturerPart
	SupplierPartsByID map[int]*inventory.SupplierPart
	TemplatesByID     map[int]*inventory.ParameterTemplate
	ParametersByID    map[int]*inventory.Parameter
	PriceBreaksByID   map[int]*inventory.PriceBreak
	AttachmentsByID   map[int]*inventory.Attachment

	// ImagesByPartID records UploadImage calls.
	ImagesByPartID map[int]string
	// StockByPartID records AddStock totals.
	StockByPartID map[int]float64

	// FailWith, when set, is returned from every mutating call. Tests use
	// it to simulate repository outages.
	FailWith error
	// FailOn fails only the named mutating methods; it takes precedence
	// over FailWith.
	FailOn map[string]error
}

// New creates an empty fake repository.
func New() *Fake {
	return &Fake{
		CategoriesByID:    map[int]*inventory.PartCategory{},
		ManufacturersByID: map[int]*inventory.Manufacturer{},
		SuppliersByID:     map[int]*inventory.Supplier{},
		PartsByID:         map[int]*inventory.Part{},
		MfrPartsByID:      map[int]*inventory.ManufacturerPart{},
		SupplierPartsByID: map[int]*inventory.SupplierPart{},
		TemplatesByID:     map[int]*inventory.ParameterTemplate{},
		ParametersByID:    map[int]*inventory.Parameter{},
		PriceBreaksByID:   map[int]*inventory.PriceBreak{},
		AttachmentsByID:   map[int]*inventory.Attachment{},
		ImagesByPartID:    map[int]string{},
		StockByPartID:     map[int]float64{},
	}
}

func (f *Fake) fail(method string) error {
	if err, ok := f.FailOn[method]; ok {
		return err
	}
	return f.FailWith
}

func (f *Fake) id() int {
	f.nextID++
	return f.nextID
}

// SupplierPartBySKU implements inventory.Client.
func (f *Fake) SupplierPartBySKU(_ context.Context, sku string) (*inventory.SupplierPart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sp := range f.SupplierPartsByID {
		if sp.SKU == sku {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, nil
}

// ManufacturerPartByMPN implements inventory.Client.
func (f *Fake) ManufacturerPartByMPN(_ context.Context, mpn string) (*inventory.ManufacturerPart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, mp := range f.MfrPartsByID {
		if mp.MPN == mpn {
			cp := *mp
			return &cp, nil
		}
	}
	return nil, nil
}

// ManufacturerPart implements inventory.Client.
func (f *Fake) ManufacturerPart(_ context.Context, id int) (*inventory.ManufacturerPart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mp, ok := f.MfrPartsByID[id]; ok {
		cp := *mp
		return &cp, nil
	}
	return nil, nil
}

// Part implements inventory.Client.
func (f *Fake) Part(_ context.Context, id int) (*inventory.Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.PartsByID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// PartByName implements inventory.Client.
func (f *Fake) PartByName(_ context.Context, name string) (*inventory.Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.PartsByID {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// GetOrCreateManufacturer implements inventory.Client.
func (f *Fake) GetOrCreateManufacturer(_ context.Context, name, link string) (*inventory.Manufacturer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetOrCreateManufacturer"); err != nil {
		return nil, err
	}
	for _, m := range f.ManufacturersByID {
		if m.Name == name {
			cp := *m
			return &cp, nil
		}
	}
	m := &inventory.Manufacturer{ID: f.id(), Name: name, Link: link}
	f.ManufacturersByID[m.ID] = m
	cp := *m
	return &cp, nil
}

// GetOrCreateSupplier implements inventory.Client.
func (f *Fake) GetOrCreateSupplier(_ context.Context, name string) (*inventory.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetOrCreateSupplier"); err != nil {
		return nil, err
	}
	for _, s := range f.SuppliersByID {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	s := &inventory.Supplier{ID: f.id(), Name: name}
	f.SuppliersByID[s.ID] = s
	cp := *s
	return &cp, nil
}

// CreatePart implements inventory.Client.
func (f *Fake) CreatePart(_ context.Context, categoryID int, data inventory.Patch) (*inventory.Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreatePart"); err != nil {
		return nil, err
	}
	p := &inventory.Part{ID: f.id(), CategoryID: categoryID}
	applyPartPatch(p, data)
	f.PartsByID[p.ID] = p
	cp := *p
	return &cp, nil
}

// UpdatePart implements inventory.Client.
func (f *Fake) UpdatePart(_ context.Context, id int, data inventory.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdatePart"); err != nil {
		return err
	}
	p, ok := f.PartsByID[id]
	if !ok {
		return fmt.Errorf("part %d not found", id)
	}
	applyPartPatch(p, data)
	return nil
}

func applyPartPatch(p *inventory.Part, data inventory.Patch) {
	if v, ok := data["name"].(string); ok {
		p.Name = v
	}
	if v, ok := data["description"].(string); ok {
		p.Description = v
	}
	if v, ok := data["link"].(string); ok {
		p.Link = v
	}
	if v, ok := data["category"].(int); ok {
		p.CategoryID = v
	}
}

// CreateManufacturerPart implements inventory.Client.
func (f *Fake) CreateManufacturerPart(_ context.Context, data inventory.Patch) (*inventory.ManufacturerPart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateManufacturerPart"); err != nil {
		return nil, err
	}
	mp := &inventory.ManufacturerPart{ID: f.id()}
	if v, ok := data["part"].(int); ok {
		mp.PartID = v
	}
	if v, ok := data["manufacturer"].(int); ok {
		mp.ManufacturerID = v
	}
	if v, ok := data["MPN"].(string); ok {
		mp.MPN = v
	}
	f.MfrPartsByID[mp.ID] = mp
	cp := *mp
	return &cp, nil
}

// UpdateManufacturerPart implements inventory.Client.
func (f *Fake) UpdateManufacturerPart(_ context.Context, id int, data inventory.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateManufacturerPart"); err != nil {
		return err
	}
	mp, ok := f.MfrPartsByID[id]
	if !ok {
		return fmt.Errorf("manufacturer part %d not found", id)
	}
	if v, ok := data["part"].(int); ok {
		mp.PartID = v
	}
	return nil
}

// CreateSupplierPart implements inventory.Client.
func (f *Fake) CreateSupplierPart(_ context.Context, data inventory.Patch) (*inventory.SupplierPart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateSupplierPart"); err != nil {
		return nil, err
	}
	sp := &inventory.SupplierPart{ID: f.id()}
	if v, ok := data["part"].(int); ok {
		sp.PartID = v
	}
	if v, ok := data["manufacturer_part"].(int); ok {
		sp.ManufacturerPartID = v
	}
	if v, ok := data["supplier"].(int); ok {
		sp.SupplierID = v
	}
	if v, ok := data["SKU"].(string); ok {
		sp.SKU = v
	}
	f.SupplierPartsByID[sp.ID] = sp
	cp := *sp
	return &cp, nil
}

// UpdateSupplierPart implements inventory.Client.
func (f *Fake) UpdateSupplierPart(_ context.Context, id int, data inventory.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateSupplierPart"); err != nil {
		return err
	}
	if _, ok := f.SupplierPartsByID[id]; !ok {
		return fmt.Errorf("supplier part %d not found", id)
	}
	return nil
}

// Parameters implements inventory.Client.
func (f *Fake) Parameters(_ context.Context, partID int) ([]inventory.Parameter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.Parameter
	for _, p := range f.ParametersByID {
		if p.PartID == partID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateParameter implements inventory.Client.
func (f *Fake) CreateParameter(_ context.Context, partID, templateID int, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateParameter"); err != nil {
		return err
	}
	name := ""
	if t, ok := f.TemplatesByID[templateID]; ok {
		name = t.Name
	}
	p := &inventory.Parameter{
		ID: f.id(), PartID: partID, TemplateID: templateID,
		TemplateName: name, Value: value,
	}
	f.ParametersByID[p.ID] = p
	return nil
}

// UpdateParameter implements inventory.Client.
func (f *Fake) UpdateParameter(_ context.Context, parameterID int, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateParameter"); err != nil {
		return err
	}
	p, ok := f.ParametersByID[parameterID]
	if !ok {
		return fmt.Errorf("parameter %d not found", parameterID)
	}
	p.Value = value
	return nil
}

// ParameterTemplates implements inventory.Client.
func (f *Fake) ParameterTemplates(context.Context) ([]inventory.ParameterTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.ParameterTemplate
	for _, t := range f.TemplatesByID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateParameterTemplate implements inventory.Client.
func (f *Fake) CreateParameterTemplate(_ context.Context, name, units string) (*inventory.ParameterTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateParameterTemplate"); err != nil {
		return nil, err
	}
	t := &inventory.ParameterTemplate{ID: f.id(), Name: name, Units: units}
	f.TemplatesByID[t.ID] = t
	cp := *t
	return &cp, nil
}

// PriceBreaks implements inventory.Client.
func (f *Fake) PriceBreaks(_ context.Context, supplierPartID int) ([]inventory.PriceBreak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.PriceBreak
	for _, pb := range f.PriceBreaksByID {
		if pb.SupplierPartID == supplierPartID {
			out = append(out, *pb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

// CreatePriceBreak implements inventory.Client.
func (f *Fake) CreatePriceBreak(_ context.Context, supplierPartID, quantity int, price float64, currency string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreatePriceBreak"); err != nil {
		return err
	}
	pb := &inventory.PriceBreak{
		ID: f.id(), SupplierPartID: supplierPartID,
		Quantity: quantity, Price: price, Currency: currency,
	}
	f.PriceBreaksByID[pb.ID] = pb
	return nil
}

// UpdatePriceBreak implements inventory.Client.
func (f *Fake) UpdatePriceBreak(_ context.Context, id int, price float64, currency string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdatePriceBreak"); err != nil {
		return err
	}
	pb, ok := f.PriceBreaksByID[id]
	if !ok {
		return fmt.Errorf("price break %d not found", id)
	}
	pb.Price = price
	pb.Currency = currency
	return nil
}

// Attachments implements inventory.Client.
func (f *Fake) Attachments(_ context.Context, partID int) ([]inventory.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.Attachment
	for _, a := range f.AttachmentsByID {
		if a.PartID == partID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UploadImage implements inventory.Client.
func (f *Fake) UploadImage(_ context.Context, partID int, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UploadImage"); err != nil {
		return err
	}
	f.ImagesByPartID[partID] = imageURL
	if p, ok := f.PartsByID[partID]; ok {
		p.ImageURL = imageURL
	}
	return nil
}

// UploadDatasheet implements inventory.Client.
func (f *Fake) UploadDatasheet(_ context.Context, partID int, datasheetURL string) error {
	return f.LinkAttachment(context.Background(), partID, datasheetURL, "datasheet")
}

// LinkAttachment implements inventory.Client.
func (f *Fake) LinkAttachment(_ context.Context, partID int, link, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("LinkAttachment"); err != nil {
		return err
	}
	a := &inventory.Attachment{ID: f.id(), PartID: partID, Link: link, Comment: comment}
	f.AttachmentsByID[a.ID] = a
	return nil
}

// Categories implements inventory.Client.
func (f *Fake) Categories(context.Context) ([]inventory.PartCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inventory.PartCategory
	for _, c := range f.CategoriesByID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateCategory implements inventory.Client.
func (f *Fake) CreateCategory(_ context.Context, parentID int, name string) (*inventory.PartCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateCategory"); err != nil {
		return nil, err
	}
	pathString := name
	if parent, ok := f.CategoriesByID[parentID]; ok {
		pathString = parent.PathString + "/" + name
	}
	c := &inventory.PartCategory{ID: f.id(), Name: name, ParentID: parentID, PathString: pathString}
	f.CategoriesByID[c.ID] = c
	cp := *c
	return &cp, nil
}

// AddStock implements inventory.Client.
func (f *Fake) AddStock(_ context.Context, partID, locationID int, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("AddStock"); err != nil {
		return err
	}
	f.StockByPartID[partID] += amount
	return nil
}
