package importer

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/partforge/partsync/pkg/catalog"
	"github.com/partforge/partsync/pkg/config"
	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/inventory"
	"github.com/partforge/partsync/pkg/severity"
	"github.com/partforge/partsync/pkg/suppliers"
)

// maxAttachmentLink is the repository's limit for attachment link fields.
const maxAttachmentLink = 200

// importCandidate resolves one selected candidate against the repository
// and applies all resulting writes. A returned error is always a transport
// or API failure and aborts the remaining suppliers for this search term;
// matching problems are encoded in the severity level instead.
func (imp *Importer) importCandidate(ctx context.Context, s suppliers.Supplier, candidate *suppliers.Candidate, call *importCall) (severity.Level, error) {
	result := severity.Success

	supplierPart, err := imp.client.SupplierPartBySKU(ctx, candidate.SKU)
	if err != nil {
		return severity.Error, err
	}
	if supplierPart != nil {
		imp.log.Info().Str("supplier", s.Name()).Str("sku", supplierPart.SKU).
			Msg("found existing supplier part")
	} else {
		imp.log.Info().Str("supplier", s.Name()).Str("sku", candidate.SKU).
			Msg("importing supplier part")
	}

	// Establish the manufacturer part: by the candidate's SKU, then by its
	// MPN, then the one already established earlier in this call, and only
	// then by creating part and manufacturer part from finalized data.
	part := call.existingPart
	var manufacturerPart *inventory.ManufacturerPart
	var matchedCategory *catalog.Category
	switch {
	case supplierPart != nil && supplierPart.ManufacturerPartID != 0:
		manufacturerPart, err = imp.client.ManufacturerPart(ctx, supplierPart.ManufacturerPartID)
		if err != nil {
			return severity.Error, err
		}
		// The supplier part references a manufacturer part the repository
		// no longer has. Treat the dangling link like a failed API call.
		if manufacturerPart == nil {
			return severity.Error, errors.NewNotFoundError("manufacturer part", strconv.Itoa(supplierPart.ManufacturerPartID))
		}
	default:
		manufacturerPart, err = imp.client.ManufacturerPartByMPN(ctx, candidate.MPN)
		if err != nil {
			return severity.Error, err
		}
		if manufacturerPart == nil && imp.establishedMP != nil {
			manufacturerPart = imp.establishedMP
		}
		if manufacturerPart == nil {
			if err := candidate.Finalize(ctx); err != nil {
				imp.log.Warn().Err(err).Str("mpn", candidate.MPN).
					Msg("failed to finalize candidate")
				return severity.Failure, nil
			}
			var lvl severity.Level
			manufacturerPart, part, matchedCategory, lvl, err = imp.createManufacturerPart(ctx, candidate, part)
			if err != nil {
				return severity.Error, err
			}
			if lvl != severity.Success {
				return lvl, nil
			}
		}
	}

	// The part's field data is only rewritten when the manufacturer part
	// changed relative to the previous supplier of this search term, which
	// avoids redundant writes when several suppliers map to the same part.
	updatePart := imp.establishedMP == nil || imp.establishedMP.ID != manufacturerPart.ID

	if !inventory.IsDryRun(imp.client) {
		if part == nil {
			part, err = imp.client.Part(ctx, manufacturerPart.PartID)
			if err != nil {
				return severity.Error, err
			}
			if part == nil {
				return severity.Error, errors.NewNotFoundError("part", strconv.Itoa(manufacturerPart.PartID))
			}
		} else if part.ID != manufacturerPart.PartID {
			if err := imp.client.UpdateManufacturerPart(ctx, manufacturerPart.ID, inventory.Patch{"part": part.ID}); err != nil {
				return severity.Error, err
			}
		}

		if updatePart {
			if err := candidate.Finalize(ctx); err != nil {
				imp.log.Warn().Err(err).Str("mpn", candidate.MPN).
					Msg("failed to finalize candidate")
				return severity.Failure, nil
			}
			if err := imp.client.UpdatePart(ctx, part.ID, candidate.PartData()); err != nil {
				return severity.Error, err
			}
		}

		if lvl, err := imp.attachMedia(ctx, part, candidate); err != nil {
			return severity.Error, err
		} else {
			result = severity.Combine(result, lvl)
		}
	}

	if len(candidate.Parameters) > 0 {
		result = severity.Combine(result, imp.reconcileParameters(ctx, part, matchedCategory, candidate, updatePart))
	}

	imp.establishedMP = manufacturerPart

	supplierCompany, err := imp.client.GetOrCreateSupplier(ctx, s.Name())
	if err != nil {
		return severity.Error, err
	}

	partID := 0
	if part != nil {
		partID = part.ID
	}
	supplierPartData := inventory.Patch{
		"part":              partID,
		"manufacturer_part": manufacturerPart.ID,
		"supplier":          supplierCompany.ID,
		"SKU":               candidate.SKU,
	}
	for k, v := range candidate.SupplierPartData() {
		supplierPartData[k] = v
	}

	action := "added"
	if supplierPart != nil {
		action = "updated"
		if err := imp.client.UpdateSupplierPart(ctx, supplierPart.ID, supplierPartData); err != nil {
			return severity.Error, err
		}
	} else {
		supplierPart, err = imp.client.CreateSupplierPart(ctx, supplierPartData)
		if err != nil {
			return severity.Error, err
		}
	}

	if err := imp.syncPriceBreaks(ctx, supplierPart, candidate); err != nil {
		return severity.Error, err
	}

	if call.stockLoc != 0 && partID != 0 {
		if err := imp.client.AddStock(ctx, partID, call.stockLoc, call.stockAmount); err != nil {
			return severity.Error, err
		}
	}

	imp.log.Info().
		Str("supplier", s.Name()).
		Str("sku", supplierPart.SKU).
		Msgf("%s supplier part", action)

	return result, nil
}

// createManufacturerPart creates (or adopts) the part and creates the
// manufacturer and manufacturer part for a first-time candidate. The
// returned category is non-nil only when the part was created fresh, in
// which case it names the configured category the part went into.
func (imp *Importer) createManufacturerPart(ctx context.Context, candidate *suppliers.Candidate, part *inventory.Part) (*inventory.ManufacturerPart, *inventory.Part, *catalog.Category, severity.Level, error) {
	partData := candidate.PartData()
	var category *catalog.Category

	if part == nil {
		existing, err := imp.client.PartByName(ctx, candidate.MPN)
		if err != nil {
			return nil, nil, nil, severity.Error, err
		}
		part = existing
	}

	if part != nil {
		if err := imp.client.UpdatePart(ctx, part.ID, partData); err != nil {
			return nil, nil, nil, severity.Error, err
		}
	} else {
		category = imp.resolveCategory(ctx, candidate.CategoryPath)
		if category == nil {
			return nil, nil, nil, severity.Failure, nil
		}

		imp.log.Info().
			Str("mpn", candidate.MPN).
			Str("category", category.PathString()).
			Msg("creating part")
		created, err := imp.client.CreatePart(ctx, category.PartCategoryID, partData)
		if err != nil {
			return nil, nil, nil, severity.Error, err
		}
		part = created
	}

	manufacturer, err := imp.client.GetOrCreateManufacturer(ctx, candidate.Manufacturer, candidate.ManufacturerLink)
	if err != nil {
		return nil, nil, nil, severity.Error, err
	}

	imp.log.Info().Str("mpn", candidate.MPN).Msg("creating manufacturer part")
	mpData := inventory.Patch{
		"part":         part.ID,
		"manufacturer": manufacturer.ID,
	}
	for k, v := range candidate.ManufacturerPartData() {
		mpData[k] = v
	}
	manufacturerPart, err := imp.client.CreateManufacturerPart(ctx, mpData)
	if err != nil {
		return nil, nil, nil, severity.Error, err
	}

	return manufacturerPart, part, category, severity.Success, nil
}

// attachMedia uploads the candidate's image when the part has none, and
// attaches the datasheet when no attachment tagged "datasheet" exists yet.
func (imp *Importer) attachMedia(ctx context.Context, part *inventory.Part, candidate *suppliers.Candidate) (severity.Level, error) {
	if part.ImageURL == "" && candidate.ImageURL != "" {
		if err := imp.client.UploadImage(ctx, part.ID, candidate.ImageURL); err != nil {
			return severity.Error, err
		}
	}

	if candidate.DatasheetURL == "" || imp.datasheets == config.DatasheetOff {
		return severity.Success, nil
	}

	attachments, err := imp.client.Attachments(ctx, part.ID)
	if err != nil {
		return severity.Error, err
	}
	for _, a := range attachments {
		if a.Comment == "datasheet" {
			return severity.Success, nil
		}
	}

	switch imp.datasheets {
	case config.DatasheetUpload:
		if err := imp.client.UploadDatasheet(ctx, part.ID, candidate.DatasheetURL); err != nil {
			return severity.Error, err
		}
	case config.DatasheetLink:
		link := sanitizeLink(candidate.DatasheetURL)
		if err := imp.client.LinkAttachment(ctx, part.ID, link, "datasheet"); err != nil {
			return severity.Error, err
		}
	}
	return severity.Success, nil
}

// sanitizeLink percent-escapes a URL (keeping ":" and "/") and caps it at
// the repository's link length limit.
func sanitizeLink(raw string) string {
	escaped := url.QueryEscape(raw)
	escaped = strings.ReplaceAll(escaped, "%3A", ":")
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	if len(escaped) > maxAttachmentLink {
		escaped = escaped[:maxAttachmentLink]
	}
	return escaped
}
