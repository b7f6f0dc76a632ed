package importer

import (
	"context"
	"sort"

	"github.com/partforge/partsync/pkg/inventory"
	"github.com/partforge/partsync/pkg/suppliers"
)

// syncPriceBreaks reconciles the candidate's price breaks with the
// repository records for the supplier part. Quantities are matched
// exactly: a break is left alone only when both price and currency are
// unchanged, otherwise it is updated, and missing quantities are created.
// Repository breaks at quantities the supplier no longer reports are kept.
func (imp *Importer) syncPriceBreaks(ctx context.Context, supplierPart *inventory.SupplierPart, candidate *suppliers.Candidate) error {
	if len(candidate.PriceBreaks) == 0 {
		return nil
	}

	currency := candidate.Currency
	if currency == "" {
		currency = imp.currency
	}

	existingList, err := imp.client.PriceBreaks(ctx, supplierPart.ID)
	if err != nil {
		return err
	}
	existing := make(map[int]inventory.PriceBreak, len(existingList))
	for _, pb := range existingList {
		existing[pb.Quantity] = pb
	}

	changed := 0
	for _, quantity := range sortedQuantities(candidate.PriceBreaks) {
		price := candidate.PriceBreaks[quantity]

		if pb, ok := existing[quantity]; ok {
			if pb.Price == price && pb.Currency == currency {
				continue
			}
			if err := imp.client.UpdatePriceBreak(ctx, pb.ID, price, currency); err != nil {
				return err
			}
			changed++
			continue
		}

		if err := imp.client.CreatePriceBreak(ctx, supplierPart.ID, quantity, price, currency); err != nil {
			return err
		}
		changed++
	}

	if changed > 0 {
		imp.log.Info().
			Str("sku", supplierPart.SKU).
			Int("changed", changed).
			Msg("updated price breaks")
	}
	return nil
}

func sortedQuantities(breaks map[int]float64) []int {
	quantities := make([]int, 0, len(breaks))
	for q := range breaks {
		quantities = append(quantities, q)
	}
	sort.Ints(quantities)
	return quantities
}
