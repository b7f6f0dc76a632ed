// Package inventory defines the boundary to the parts-inventory repository
// (an InvenTree-style REST service). The import engine only ever talks to
// the Client interface; entities are transient snapshots identified by the
// repository's stable numeric IDs, and all updates are partial-field
// patches applied server-side.
package inventory

// Patch is a partial-field update. Only the named fields are modified.
type Patch map[string]any

// PartCategory is a node in the repository's category tree.
type PartCategory struct {
	ID         int
	Name       string
	PathString string // "Electronics/Resistors/Chip Resistors"
	ParentID   int
}

// Manufacturer is a company that makes parts.
type Manufacturer struct {
	ID   int
	Name string
	Link string
}

// Supplier is a company that sells parts.
type Supplier struct {
	ID   int
	Name string
}

// Part is the repository's representation of a logical component.
type Part struct {
	ID          int
	CategoryID  int
	Name        string
	Description string
	Link        string
	ImageURL    string // empty when the part has no image
}

// ManufacturerPart ties a Part to a Manufacturer under an MPN.
type ManufacturerPart struct {
	ID             int
	PartID         int
	ManufacturerID int
	MPN            string
}

// SupplierPart is one supplier's listing (SKU) for a manufacturer part.
type SupplierPart struct {
	ID                 int
	PartID             int
	ManufacturerPartID int
	SupplierID         int
	SKU                string
}

// ParameterTemplate is a named, typed slot for a technical attribute.
type ParameterTemplate struct {
	ID    int
	Name  string
	Units string
}

// Parameter is a template value attached to a part.
type Parameter struct {
	ID           int
	PartID       int
	TemplateID   int
	TemplateName string
	Value        string
}

// PriceBreak is a quantity threshold with its unit price.
type PriceBreak struct {
	ID             int
	SupplierPartID int
	Quantity       int
	Price          float64
	Currency       string
}

// Attachment is a file or external link attached to a part. The Comment
// field carries the attachment kind; datasheets use the comment "datasheet".
type Attachment struct {
	ID      int
	PartID  int
	Comment string
	Link    string
}
