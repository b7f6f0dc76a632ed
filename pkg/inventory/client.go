package inventory

import "context"

// Client is the abstract repository contract consumed by the import engine.
// Lookup methods return (nil, nil) when no matching entity exists; a non-nil
// error always means the call itself failed. Implementations translate
// non-2xx responses into *errors.APIError so callers can surface structured
// detail.
type Client interface {
	// Lookups by key.
	SupplierPartBySKU(ctx context.Context, sku string) (*SupplierPart, error)
	ManufacturerPartByMPN(ctx context.Context, mpn string) (*ManufacturerPart, error)
	ManufacturerPart(ctx context.Context, id int) (*ManufacturerPart, error)
	Part(ctx context.Context, id int) (*Part, error)
	PartByName(ctx context.Context, name string) (*Part, error)

	// Companies. GetOrCreate semantics are idempotent by name.
	GetOrCreateManufacturer(ctx context.Context, name, link string) (*Manufacturer, error)
	GetOrCreateSupplier(ctx context.Context, name string) (*Supplier, error)

	// Parts and their relations.
	CreatePart(ctx context.Context, categoryID int, data Patch) (*Part, error)
	UpdatePart(ctx context.Context, id int, data Patch) error
	CreateManufacturerPart(ctx context.Context, data Patch) (*ManufacturerPart, error)
	UpdateManufacturerPart(ctx context.Context, id int, data Patch) error
	CreateSupplierPart(ctx context.Context, data Patch) (*SupplierPart, error)
	UpdateSupplierPart(ctx context.Context, id int, data Patch) error

	// Parameters.
	Parameters(ctx context.Context, partID int) ([]Parameter, error)
	CreateParameter(ctx context.Context, partID, templateID int, value string) error
	UpdateParameter(ctx context.Context, parameterID int, value string) error
	ParameterTemplates(ctx context.Context) ([]ParameterTemplate, error)
	CreateParameterTemplate(ctx context.Context, name, units string) (*ParameterTemplate, error)

	// Price breaks.
	PriceBreaks(ctx context.Context, supplierPartID int) ([]PriceBreak, error)
	CreatePriceBreak(ctx context.Context, supplierPartID, quantity int, price float64, currency string) error
	UpdatePriceBreak(ctx context.Context, id int, price float64, currency string) error

	// Attachments and images.
	Attachments(ctx context.Context, partID int) ([]Attachment, error)
	UploadImage(ctx context.Context, partID int, imageURL string) error
	UploadDatasheet(ctx context.Context, partID int, datasheetURL string) error
	LinkAttachment(ctx context.Context, partID int, link, comment string) error

	// Categories.
	Categories(ctx context.Context) ([]PartCategory, error)
	CreateCategory(ctx context.Context, parentID int, name string) (*PartCategory, error)

	// Stock.
	AddStock(ctx context.Context, partID, locationID int, amount float64) error
}

// dryRunner is implemented by clients whose mutations are disabled.
type dryRunner interface {
	DryRun() bool
}

// IsDryRun reports whether c suppresses mutating calls.
func IsDryRun(c Client) bool {
	if d, ok := c.(dryRunner); ok {
		return d.DryRun()
	}
	return false
}
