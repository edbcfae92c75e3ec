package service

import (
	"testing"

	"washdesk_backend/internal/offers/repository"
	"washdesk_backend/internal/offers/transport"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func variantOption(scopeID, name string, items ...repository.OfferOptionItem) repository.OptionWithItems {
	opt := repository.OfferOption{ID: uuid.New(), Name: name, ScopeID: strPtr(scopeID)}
	for i := range items {
		items[i].OptionID = opt.ID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return repository.OptionWithItems{Option: opt, Items: items}
}

func upsellOption(name string, items ...repository.OfferOptionItem) repository.OptionWithItems {
	opt := repository.OfferOption{ID: uuid.New(), Name: name, IsUpsell: true}
	for i := range items {
		items[i].OptionID = opt.ID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return repository.OptionWithItems{Option: opt, Items: items}
}

func TestResolveSelection_NilSnapshotMeansNoSelection(t *testing.T) {
	options := []repository.OptionWithItems{
		variantOption("exterior", "Basic wash", repository.OfferOptionItem{Name: "Wash", UnitPriceCents: 5000, Quantity: 1}),
	}

	if got := ResolveSelection(options, nil, 23); got != nil {
		t.Fatalf("expected nil for absent snapshot, got %+v", got)
	}
}

func TestResolveSelection_VariantChoiceSumsItemsAfterDiscount(t *testing.T) {
	ow := variantOption("exterior", "Premium wash",
		repository.OfferOptionItem{Name: "Hand wash", UnitPriceCents: 5000, Quantity: 2},
		repository.OfferOptionItem{Name: "Wax", UnitPriceCents: 3000, Quantity: 1, DiscountPercent: 10},
	)
	snap := &transport.SelectionSnapshot{
		VariantChoices: map[string]uuid.UUID{"exterior": ow.Option.ID},
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if got == nil {
		t.Fatal("expected a resolution, got nil")
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}
	if got.Lines[0].Name != "Premium wash" {
		t.Fatalf("expected line name 'Premium wash', got %q", got.Lines[0].Name)
	}
	// 50*2 + 30*0.9 = 127.00
	if got.Lines[0].PriceCents != 12700 {
		t.Fatalf("expected line price 12700, got %d", got.Lines[0].PriceCents)
	}
	if got.TotalNetCents != 12700 {
		t.Fatalf("expected total net 12700, got %d", got.TotalNetCents)
	}
	if got.TotalGrossCents != 15621 {
		t.Fatalf("expected total gross 15621, got %d", got.TotalGrossCents)
	}
}

func TestResolveSelection_VariantFallsBackToCachedSubtotal(t *testing.T) {
	ow := variantOption("interior", "Interior detail")
	ow.Option.SubtotalNetCents = 8000
	snap := &transport.SelectionSnapshot{
		VariantChoices: map[string]uuid.UUID{"interior": ow.Option.ID},
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if len(got.Lines) != 1 || got.Lines[0].PriceCents != 8000 {
		t.Fatalf("expected cached subtotal 8000, got %+v", got.Lines)
	}
}

func TestResolveSelection_UpsellFineGrainedEmitsOnlyMarkedItem(t *testing.T) {
	marked := repository.OfferOptionItem{ID: uuid.New(), Name: "Engine bay", CustomName: strPtr("Engine bay clean"), UnitPriceCents: 4000, Quantity: 1}
	unmarked := repository.OfferOptionItem{ID: uuid.New(), Name: "Headlight polish", UnitPriceCents: 2500, Quantity: 1}
	ow := upsellOption("Extras", marked, unmarked)

	snap := &transport.SelectionSnapshot{
		UpsellChoices: map[uuid.UUID]bool{ow.Option.ID: true},
		ItemOverrides: map[uuid.UUID]bool{marked.ID: true},
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if len(got.Lines) != 1 {
		t.Fatalf("expected exactly 1 line, got %d", len(got.Lines))
	}
	if got.Lines[0].Name != "Engine bay clean" {
		t.Fatalf("expected custom name 'Engine bay clean', got %q", got.Lines[0].Name)
	}
	if got.Lines[0].PriceCents != 4000 {
		t.Fatalf("expected price 4000, got %d", got.Lines[0].PriceCents)
	}
}

func TestResolveSelection_UpsellWithoutOverridesEmitsAggregate(t *testing.T) {
	ow := upsellOption("Ceramic coating",
		repository.OfferOptionItem{Name: "Coating", UnitPriceCents: 30000, Quantity: 1},
		repository.OfferOptionItem{Name: "Prep", UnitPriceCents: 5000, Quantity: 1},
	)
	snap := &transport.SelectionSnapshot{
		UpsellChoices: map[uuid.UUID]bool{ow.Option.ID: true},
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 aggregate line, got %d", len(got.Lines))
	}
	if got.Lines[0].Name != "Ceramic coating" || got.Lines[0].PriceCents != 35000 {
		t.Fatalf("expected aggregate 'Ceramic coating' 35000, got %+v", got.Lines[0])
	}
}

func TestResolveSelection_StandaloneItemsDeduplicateByName(t *testing.T) {
	first := repository.OfferOptionItem{ID: uuid.New(), Name: "Odor removal", UnitPriceCents: 6000, Quantity: 1}
	duplicate := repository.OfferOptionItem{ID: uuid.New(), Name: "Odor removal", UnitPriceCents: 6500, Quantity: 1}
	owA := upsellOption("Add-ons A", first)
	owB := upsellOption("Add-ons B", duplicate)

	// Neither option is accepted, so both items fall through to the
	// standalone step and compete on display name.
	snap := &transport.SelectionSnapshot{
		ItemOverrides: map[uuid.UUID]bool{first.ID: true, duplicate.ID: true},
	}

	got := ResolveSelection([]repository.OptionWithItems{owA, owB}, snap, 23)
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 de-duplicated line, got %d", len(got.Lines))
	}
	if got.Lines[0].PriceCents != 6000 {
		t.Fatalf("expected first occurrence to win with 6000, got %d", got.Lines[0].PriceCents)
	}
}

func TestResolveSelection_StandaloneSkipsItemsOfCoveredOptions(t *testing.T) {
	item := repository.OfferOptionItem{ID: uuid.New(), Name: "Wash", UnitPriceCents: 5000, Quantity: 1}
	ow := variantOption("exterior", "Basic wash", item)

	snap := &transport.SelectionSnapshot{
		VariantChoices: map[string]uuid.UUID{"exterior": ow.Option.ID},
		ItemOverrides:  map[uuid.UUID]bool{item.ID: true},
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if len(got.Lines) != 1 {
		t.Fatalf("expected covered option to suppress standalone line, got %d lines", len(got.Lines))
	}
	if got.Lines[0].Name != "Basic wash" {
		t.Fatalf("expected the variant aggregate line, got %q", got.Lines[0].Name)
	}
}

func TestResolveSelection_CatalogDriftIsSkippedSilently(t *testing.T) {
	ow := variantOption("exterior", "Basic wash",
		repository.OfferOptionItem{Name: "Wash", UnitPriceCents: 5000, Quantity: 1},
	)
	snap := &transport.SelectionSnapshot{
		VariantChoices: map[string]uuid.UUID{"exterior": uuid.New()}, // option no longer exists
		UpsellChoices:  map[uuid.UUID]bool{uuid.New(): true},
		ItemOverrides:  map[uuid.UUID]bool{uuid.New(): true},
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if got == nil {
		t.Fatal("drift must not turn into a nil result")
	}
	if len(got.Lines) != 0 {
		t.Fatalf("expected no lines for stale ids, got %d", len(got.Lines))
	}
}

func TestResolveSelection_SnapshotTotalsAreAuthoritative(t *testing.T) {
	ow := variantOption("exterior", "Basic wash",
		repository.OfferOptionItem{Name: "Wash", UnitPriceCents: 5000, Quantity: 1},
	)
	snap := &transport.SelectionSnapshot{
		VariantChoices:  map[string]uuid.UUID{"exterior": ow.Option.ID},
		TotalNetCents:   int64Ptr(9999),
		TotalGrossCents: int64Ptr(12299),
	}

	got := ResolveSelection([]repository.OptionWithItems{ow}, snap, 23)
	if got.TotalNetCents != 9999 || got.TotalGrossCents != 12299 {
		t.Fatalf("expected stored totals 9999/12299, got %d/%d", got.TotalNetCents, got.TotalGrossCents)
	}
}

func TestResolveSelection_EmptyChoicesKeepStoredTotals(t *testing.T) {
	// Zero resolved lines but a stored total: the snapshot is authoritative
	// for totals, the line list is best-effort detail.
	snap := &transport.SelectionSnapshot{
		TotalNetCents: int64Ptr(4500),
	}

	got := ResolveSelection(nil, snap, 23)
	if got == nil {
		t.Fatal("expected a resolution for a present-but-empty snapshot")
	}
	if len(got.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(got.Lines))
	}
	if got.TotalNetCents != 4500 {
		t.Fatalf("expected stored net 4500, got %d", got.TotalNetCents)
	}
	if got.TotalGrossCents != 5535 {
		t.Fatalf("expected derived gross 5535, got %d", got.TotalGrossCents)
	}
}
