package inventory

import "context"

// DryRun wraps a client so that every mutating call becomes a no-op.
// Reads pass through unchanged; writes succeed and hand back synthetic
// entities with zero identifiers, which lets the matching logic run to
// completion without touching the repository.
func DryRun(c Client) Client {
	return &dryRunClient{Client: c}
}

type dryRunClient struct {
	Client
}

// DryRun implements the dryRunner probe used by IsDryRun.
func (d *dryRunClient) DryRun() bool { return true }

func (d *dryRunClient) GetOrCreateManufacturer(ctx context.Context, name, link string) (*Manufacturer, error) {
	return &Manufacturer{Name: name, Link: link}, nil
}

func (d *dryRunClient) GetOrCreateSupplier(ctx context.Context, name string) (*Supplier, error) {
	return &Supplier{Name: name}, nil
}

func (d *dryRunClient) CreatePart(ctx context.Context, categoryID int, data Patch) (*Part, error) {
	part := &Part{CategoryID: categoryID}
	if name, ok := data["name"].(string); ok {
		part.Name = name
	}
	return part, nil
}

func (d *dryRunClient) UpdatePart(context.Context, int, Patch) error { return nil }

func (d *dryRunClient) CreateManufacturerPart(ctx context.Context, data Patch) (*ManufacturerPart, error) {
	mp := &ManufacturerPart{}
	if mpn, ok := data["MPN"].(string); ok {
		mp.MPN = mpn
	}
	return mp, nil
}

func (d *dryRunClient) UpdateManufacturerPart(context.Context, int, Patch) error { return nil }

func (d *dryRunClient) CreateSupplierPart(ctx context.Context, data Patch) (*SupplierPart, error) {
	sp := &SupplierPart{}
	if sku, ok := data["SKU"].(string); ok {
		sp.SKU = sku
	}
	return sp, nil
}

func (d *dryRunClient) UpdateSupplierPart(context.Context, int, Patch) error { return nil }

func (d *dryRunClient) CreateParameter(context.Context, int, int, string) error { return nil }

func (d *dryRunClient) UpdateParameter(context.Context, int, string) error { return nil }

func (d *dryRunClient) CreateParameterTemplate(ctx context.Context, name, units string) (*ParameterTemplate, error) {
	return &ParameterTemplate{Name: name, Units: units}, nil
}

func (d *dryRunClient) CreatePriceBreak(context.Context, int, int, float64, string) error {
	return nil
}

func (d *dryRunClient) UpdatePriceBreak(context.Context, int, float64, string) error { return nil }

func (d *dryRunClient) UploadImage(context.Context, int, string) error { return nil }

func (d *dryRunClient) UploadDatasheet(context.Context, int, string) error { return nil }

func (d *dryRunClient) LinkAttachment(context.Context, int, string, string) error { return nil }

func (d *dryRunClient) CreateCategory(ctx context.Context, parentID int, name string) (*PartCategory, error) {
	return &PartCategory{Name: name, ParentID: parentID}, nil
}

func (d *dryRunClient) AddStock(context.Context, int, int, float64) error { return nil }
