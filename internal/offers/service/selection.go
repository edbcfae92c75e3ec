package service

import (
	"washdesk_backend/internal/offers/repository"
	"washdesk_backend/internal/offers/transport"
)

// ResolvedLine is one purchased line derived from a selection snapshot
type ResolvedLine struct {
	Name       string
	PriceCents int64
}

// ResolvedSelection is the flat view of what a customer actually picked
type ResolvedSelection struct {
	Lines           []ResolvedLine
	TotalNetCents   int64
	TotalGrossCents int64
}

// itemNetCents prices one line item: unit × quantity × (1 − discount/100).
func itemNetCents(item repository.OfferOptionItem) int64 {
	return roundCents(float64(item.UnitPriceCents) * item.Quantity * (1.0 - item.DiscountPercent/100.0))
}

// itemDisplayName prefers the item's custom name over its catalog name.
func itemDisplayName(item repository.OfferOptionItem) string {
	if item.CustomName != nil && *item.CustomName != "" {
		return *item.CustomName
	}
	return item.Name
}

// optionValueCents sums an option's items after per-item discounts, falling
// back to the cached subtotal only when the item sum is zero.
func optionValueCents(ow repository.OptionWithItems) int64 {
	var sum int64
	for _, item := range ow.Items {
		sum += itemNetCents(item)
	}
	if sum == 0 {
		return ow.Option.SubtotalNetCents
	}
	return sum
}

// ResolveSelection reconstructs the purchased line items from a selection
// snapshot over the offer's option tree. It never mutates its inputs.
//
// Evaluation order is fixed and later steps never duplicate earlier coverage:
//  1. chosen scope variants, one aggregate line per option
//  2. accepted upsells; fine-grained item overrides narrow an upsell to
//     individual item lines, otherwise the whole option is one line
//  3. remaining overridden items of uncovered options, de-duplicated by
//     display name
//
// Snapshot ids that no longer resolve against the catalog are skipped
// silently; that is expected drift, not an error. A nil snapshot returns nil:
// "customer never chose" is distinct from "customer chose nothing extra".
// Snapshot totals are authoritative when present; the line sum is the fallback.
func ResolveSelection(options []repository.OptionWithItems, snap *transport.SelectionSnapshot, vatRate int) *ResolvedSelection {
	if snap == nil {
		return nil
	}

	var lines []ResolvedLine
	covered := make(map[string]bool)      // option ids handled by steps 1-2
	emittedNames := make(map[string]bool) // display names already on a line

	push := func(name string, price int64) {
		lines = append(lines, ResolvedLine{Name: name, PriceCents: price})
		emittedNames[name] = true
	}

	// Step 1: chosen variant per scope
	for _, ow := range options {
		opt := ow.Option
		if opt.ScopeID == nil {
			continue
		}
		if chosen, ok := snap.VariantChoices[*opt.ScopeID]; !ok || chosen != opt.ID {
			continue
		}
		push(opt.Name, optionValueCents(ow))
		covered[opt.ID.String()] = true
	}

	// Step 2: accepted upsells
	for _, ow := range options {
		opt := ow.Option
		if !opt.IsUpsell || covered[opt.ID.String()] || !snap.UpsellChoices[opt.ID] {
			continue
		}
		var fineGrained []repository.OfferOptionItem
		for _, item := range ow.Items {
			if snap.ItemOverrides[item.ID] {
				fineGrained = append(fineGrained, item)
			}
		}
		if len(fineGrained) > 0 {
			for _, item := range fineGrained {
				push(itemDisplayName(item), itemNetCents(item))
			}
		} else {
			push(opt.Name, optionValueCents(ow))
		}
		covered[opt.ID.String()] = true
	}

	// Step 3: remaining overridden items of uncovered options
	for _, ow := range options {
		if covered[ow.Option.ID.String()] {
			continue
		}
		for _, item := range ow.Items {
			if !snap.ItemOverrides[item.ID] {
				continue
			}
			name := itemDisplayName(item)
			if emittedNames[name] {
				continue
			}
			push(name, itemNetCents(item))
		}
	}

	var lineSum int64
	for _, line := range lines {
		lineSum += line.PriceCents
	}

	totalNet := lineSum
	if snap.TotalNetCents != nil {
		totalNet = *snap.TotalNetCents
	}
	totalGross := roundCents(float64(totalNet) * vatMultiplier(vatRate))
	if snap.TotalGrossCents != nil {
		totalGross = *snap.TotalGrossCents
	}

	return &ResolvedSelection{
		Lines:           lines,
		TotalNetCents:   totalNet,
		TotalGrossCents: totalGross,
	}
}
