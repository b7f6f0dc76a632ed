package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partsync/internal/inventorytest"
	"github.com/partforge/partsync/pkg/catalog"
	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/inventory"
	"github.com/partforge/partsync/pkg/prompt"
	"github.com/partforge/partsync/pkg/severity"
	"github.com/partforge/partsync/pkg/suppliers"
)

const testConfig = `
categories:
  Electronics:
    Resistors:
      _aliases: [Chip Resistor - Surface Mount]
      _parameters: [Resistance, Tolerance]
    Capacitors:
      _aliases: [Ceramic Capacitors MLCC]
      _parameters: [Capacitance]
parameters:
  Resistance:
    units: ohm
    aliases: [Resistance (Ohms)]
  Tolerance:
    aliases: []
  Capacitance:
    units: F
    aliases: []
`

type stubSupplier struct {
	name       string
	candidates []*suppliers.Candidate
	total      int
	searches   int
	err        error
}

func (s *stubSupplier) Name() string { return s.name }

func (s *stubSupplier) Search(context.Context, string) ([]*suppliers.Candidate, int, error) {
	s.searches++
	if s.total == 0 {
		s.total = len(s.candidates)
	}
	return s.candidates, s.total, s.err
}

func resistorCandidate(sku string) *suppliers.Candidate {
	return &suppliers.Candidate{
		Description:       "100 kohm 1% 0402 chip resistor",
		ImageURL:          "https://img.example.com/" + sku + ".png",
		DatasheetURL:      "https://docs.example.com/" + sku + ".pdf",
		SupplierLink:      "https://shop.example.com/" + sku,
		SKU:               sku,
		Manufacturer:      "Resistorworks",
		ManufacturerLink:  "https://resistorworks.example.com",
		MPN:               "RW0402-100K",
		QuantityAvailable: 5000,
		Packaging:         "Cut Tape",
		CategoryPath:      []string{"Passives", "Resistors", "Chip Resistor - Surface Mount"},
		Parameters: map[string]string{
			"Resistance (Ohms)": "100k",
			"Tolerance":         "±1%",
		},
		PriceBreaks: map[int]float64{1: 0.10, 10: 0.05},
		Currency:    "EUR",
	}
}

func newImporter(t *testing.T, client inventory.Client, sups []suppliers.Supplier, opts ...Option) *Importer {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(testConfig))
	require.NoError(t, err)
	imp, err := New(context.Background(), client, cat, sups, opts...)
	require.NoError(t, err)
	return imp
}

func TestImportNewPart(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Success, level)

	require.Len(t, fake.PartsByID, 1)
	require.Len(t, fake.MfrPartsByID, 1)
	require.Len(t, fake.SupplierPartsByID, 1)

	var part *inventory.Part
	for _, p := range fake.PartsByID {
		part = p
	}
	assert.Equal(t, "RW0402-100K", part.Name)
	assert.Equal(t, "100 kohm 1% 0402 chip resistor", part.Description)

	values := map[string]string{}
	for _, p := range fake.ParametersByID {
		values[p.TemplateName] = p.Value
	}
	assert.Equal(t, map[string]string{"Resistance": "100k", "Tolerance": "1%"}, values)

	assert.Len(t, fake.PriceBreaksByID, 2)
	assert.Equal(t, "https://img.example.com/STUB-1.png", fake.ImagesByPartID[part.ID])

	attachments, err := fake.Attachments(context.Background(), part.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "datasheet", attachments[0].Comment)
}

func TestImportSameMPNFromTwoSuppliers(t *testing.T) {
	fake := inventorytest.New()
	first := &stubSupplier{name: "alpha", candidates: []*suppliers.Candidate{resistorCandidate("A-1")}}
	second := &stubSupplier{name: "beta", candidates: []*suppliers.Candidate{resistorCandidate("B-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{first, second})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Success, level)

	assert.Len(t, fake.PartsByID, 1)
	assert.Len(t, fake.MfrPartsByID, 1)
	assert.Len(t, fake.SupplierPartsByID, 2)
	assert.Len(t, fake.SuppliersByID, 2)
}

func TestReimportIsIdempotent(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	parts := len(fake.PartsByID)
	parameters := len(fake.ParametersByID)
	priceBreaks := len(fake.PriceBreaksByID)
	attachments := len(fake.AttachmentsByID)

	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	assert.Len(t, fake.PartsByID, parts)
	assert.Len(t, fake.SupplierPartsByID, 1)
	assert.Len(t, fake.ParametersByID, parameters)
	assert.Len(t, fake.PriceBreaksByID, priceBreaks)
	assert.Len(t, fake.AttachmentsByID, attachments)
}

func TestPriceBreaksMergeWithoutDeleting(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	s.candidates[0].PriceBreaks = map[int]float64{10: 1.00, 100: 0.80}
	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	s.candidates = []*suppliers.Candidate{resistorCandidate("STUB-1")}
	s.candidates[0].PriceBreaks = map[int]float64{10: 1.00, 50: 0.90}
	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	byQuantity := map[int]float64{}
	for _, pb := range fake.PriceBreaksByID {
		byQuantity[pb.Quantity] = pb.Price
	}
	assert.Equal(t, map[int]float64{10: 1.00, 50: 0.90, 100: 0.80}, byQuantity)
}

func TestPriceBreakCurrencyChangeIsUpdated(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	s.candidates = []*suppliers.Candidate{resistorCandidate("STUB-1")}
	s.candidates[0].Currency = "USD"
	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	require.Len(t, fake.PriceBreaksByID, 2)
	for _, pb := range fake.PriceBreaksByID {
		assert.Equal(t, "USD", pb.Currency)
	}
}

func TestNoResultsAnywhereIsFailure(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub"}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "UNKNOWN-999")
	assert.Equal(t, severity.Failure, level)
	assert.Empty(t, fake.PartsByID)
}

func TestMultipleResultsWithoutPromptIsIncomplete(t *testing.T) {
	fake := inventorytest.New()
	first := &stubSupplier{name: "alpha", candidates: []*suppliers.Candidate{resistorCandidate("A-1")}}
	second := &stubSupplier{name: "beta", candidates: []*suppliers.Candidate{
		resistorCandidate("B-1"), resistorCandidate("B-2"),
	}}
	imp := newImporter(t, fake, []suppliers.Supplier{first, second})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Incomplete, level)
	// The unambiguous supplier was still imported.
	assert.Len(t, fake.SupplierPartsByID, 1)
}

func TestInteractiveSelection(t *testing.T) {
	fake := inventorytest.New()
	one := resistorCandidate("PICK-1")
	two := resistorCandidate("PICK-2")
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{one, two}}
	script := &prompt.Script{Selections: []int{1}}
	imp := newImporter(t, fake, []suppliers.Supplier{s}, WithChooser(script))

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Success, level)

	require.Len(t, fake.SupplierPartsByID, 1)
	for _, sp := range fake.SupplierPartsByID {
		assert.Equal(t, "PICK-2", sp.SKU)
	}
}

func TestInteractiveSkipIsFailure(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{
		resistorCandidate("SKIP-1"), resistorCandidate("SKIP-2"),
	}}
	script := &prompt.Script{Selections: []int{prompt.None}}
	imp := newImporter(t, fake, []suppliers.Supplier{s}, WithChooser(script))

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Failure, level)
	assert.Empty(t, fake.SupplierPartsByID)
}

func TestSearchErrorAbortsRemainingSuppliers(t *testing.T) {
	fake := inventorytest.New()
	broken := &stubSupplier{name: "broken", err: errors.NewAPIError("broken", "/search", 503, nil)}
	healthy := &stubSupplier{name: "healthy", candidates: []*suppliers.Candidate{resistorCandidate("H-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{broken, healthy})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Error, level)
	assert.Empty(t, fake.SupplierPartsByID)
}

func TestDanglingManufacturerPartIsError(t *testing.T) {
	fake := inventorytest.New()
	// A manufacturer part whose linked part is gone from the repository.
	fake.MfrPartsByID[99] = &inventory.ManufacturerPart{ID: 99, PartID: 12345, MPN: "RW0402-100K"}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Error, level)
	assert.Empty(t, fake.SupplierPartsByID)
}

func TestDanglingSupplierPartLinkIsError(t *testing.T) {
	fake := inventorytest.New()
	// A supplier part referencing a manufacturer part that no longer exists.
	fake.SupplierPartsByID[5] = &inventory.SupplierPart{ID: 5, SKU: "STUB-1", ManufacturerPartID: 77}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Error, level)
	assert.Empty(t, fake.PartsByID)
}

func TestRepositoryWriteFailureIsError(t *testing.T) {
	fake := inventorytest.New()
	first := &stubSupplier{name: "alpha", candidates: []*suppliers.Candidate{resistorCandidate("A-1")}}
	second := &stubSupplier{name: "beta", candidates: []*suppliers.Candidate{resistorCandidate("B-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{first, second})

	fake.FailWith = errors.NewAPIError("inventree", "/api/part/", 503, []byte(`{"detail":"service unavailable"}`))

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Error, level)
	assert.Empty(t, fake.PartsByID)
	assert.Empty(t, fake.SupplierPartsByID)
	// The outstanding search finished before the call returned.
	assert.Equal(t, 1, second.searches)
}

func TestParameterWriteFailureIsIncomplete(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	fake.FailOn = map[string]error{
		"CreateParameter": errors.NewAPIError("inventree", "/api/part/parameter/", 400, []byte(`{"data":["invalid choice"]}`)),
	}

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Incomplete, level)

	// The rest of the import still went through.
	assert.Len(t, fake.PartsByID, 1)
	assert.Len(t, fake.SupplierPartsByID, 1)
	assert.Len(t, fake.PriceBreaksByID, 2)
	assert.Empty(t, fake.ParametersByID)
}

func TestInteractiveParameterRescue(t *testing.T) {
	fake := inventorytest.New()
	candidate := resistorCandidate("STUB-1")
	candidate.Parameters = map[string]string{"Res. (Ohm)": "100k"}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{candidate}}
	// Resistance takes the offered raw value, Tolerance is entered manually.
	script := &prompt.Script{Selections: []int{0, 1}, Inputs: []string{"5%"}}
	imp := newImporter(t, fake, []suppliers.Supplier{s}, WithChooser(script))

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Success, level)

	values := map[string]string{}
	for _, p := range fake.ParametersByID {
		values[p.TemplateName] = p.Value
	}
	assert.Equal(t, map[string]string{"Resistance": "100k", "Tolerance": "5%"}, values)

	// Taking the offered value registered the raw name as an alias.
	templates := imp.catalog.TemplatesForAlias("Res. (Ohm)")
	require.Len(t, templates, 1)
	assert.Equal(t, "Resistance", templates[0].Name)

	assert.Empty(t, script.Selections)
	assert.Empty(t, script.Inputs)
}

func TestUnmatchedParameterIsIncomplete(t *testing.T) {
	fake := inventorytest.New()
	candidate := resistorCandidate("STUB-1")
	candidate.Parameters = map[string]string{"Mounting Style": "SMD"}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{candidate}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Incomplete, level)
	assert.Empty(t, fake.ParametersByID)
}

func TestUnknownCategoryIsFailure(t *testing.T) {
	fake := inventorytest.New()
	candidate := resistorCandidate("STUB-1")
	candidate.CategoryPath = []string{"Mystery", "Widgets"}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{candidate}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Failure, level)
	assert.Empty(t, fake.PartsByID)
}

func TestInteractiveCategoryRescueAddsAlias(t *testing.T) {
	fake := inventorytest.New()
	candidate := resistorCandidate("STUB-1")
	candidate.CategoryPath = []string{"Passives", "Thick Film Resistors"}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{candidate}}
	// First selection picks the top-ranked category.
	script := &prompt.Script{Selections: []int{0}}
	imp := newImporter(t, fake, []suppliers.Supplier{s}, WithChooser(script))

	require.Equal(t, severity.Success, imp.ImportPart(context.Background(), "RW0402-100K"))

	// The leaf segment is now an alias and resolves without prompting.
	category, ok := imp.catalog.CategoryByAlias("Thick Film Resistors")
	require.True(t, ok)
	assert.Equal(t, "Resistors", category.Name)
	assert.Empty(t, script.Selections)
}

func TestStockIsAdded(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K", WithStock(7, 25))
	assert.Equal(t, severity.Success, level)

	require.Len(t, fake.PartsByID, 1)
	for id := range fake.PartsByID {
		assert.Equal(t, 25.0, fake.StockByPartID[id])
	}
}

func TestOnlySupplierRestrictsSearch(t *testing.T) {
	fake := inventorytest.New()
	first := &stubSupplier{name: "alpha", candidates: []*suppliers.Candidate{resistorCandidate("A-1")}}
	second := &stubSupplier{name: "beta", candidates: []*suppliers.Candidate{resistorCandidate("B-1")}}
	imp := newImporter(t, fake, []suppliers.Supplier{first, second})

	level := imp.ImportPart(context.Background(), "RW0402-100K", WithOnlySupplier("beta"))
	assert.Equal(t, severity.Success, level)

	require.Len(t, fake.SupplierPartsByID, 1)
	for _, sp := range fake.SupplierPartsByID {
		assert.Equal(t, "B-1", sp.SKU)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	fake := inventorytest.New()
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{resistorCandidate("STUB-1")}}
	imp := newImporter(t, inventory.DryRun(fake), []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Success, level)

	assert.Empty(t, fake.PartsByID)
	assert.Empty(t, fake.MfrPartsByID)
	assert.Empty(t, fake.SupplierPartsByID)
	assert.Empty(t, fake.CategoriesByID)
	assert.Empty(t, fake.TemplatesByID)
}

func TestFinalizeErrorIsFailureNotError(t *testing.T) {
	fake := inventorytest.New()
	candidate := resistorCandidate("STUB-1")
	candidate.FinalizeFunc = func(context.Context, *suppliers.Candidate) error {
		return errors.NewAPIError("stub", "/product", 500, nil)
	}
	s := &stubSupplier{name: "stub", candidates: []*suppliers.Candidate{candidate}}
	imp := newImporter(t, fake, []suppliers.Supplier{s})

	level := imp.ImportPart(context.Background(), "RW0402-100K")
	assert.Equal(t, severity.Failure, level)
	assert.Empty(t, fake.PartsByID)
}

func TestSanitizeParameterValue(t *testing.T) {
	cases := map[string]string{
		" 10 ± 5% ":  "10 5%",
		"-":          "",
		"100 Ohms":   "100 ohm",
		"4.7 kOhm":   "4.7 kohm",
		"  25   V  ": "25 V",
		"±20%":       "20%",
		"100k":       "100k",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeParameterValue(input), "input %q", input)
	}
}

func TestFormatCandidatesAligns(t *testing.T) {
	rows := formatCandidates([]*suppliers.Candidate{
		{MPN: "RW0402-100K", Manufacturer: "Resistorworks", SKU: "A-1", SupplierLink: "https://a.example.com"},
		{MPN: "X1", Manufacturer: "Z", SKU: "LONG-SKU-2", SupplierLink: "https://b.example.com"},
	})
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "RW0402-100K")
	assert.Contains(t, rows[1], "LONG-SKU-2")
	// Columns line up: the pipe separators sit at the same offsets.
	assert.Equal(t, strings.Index(rows[0], "|"), strings.Index(rows[1], "|"))
}
