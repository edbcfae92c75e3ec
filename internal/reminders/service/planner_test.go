package service

import (
	"testing"
	"time"

	offersrepo "washdesk_backend/internal/offers/repository"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestPlanSchedule_OffsetsUseAverageMonthLength(t *testing.T) {
	productID := uuid.New()
	completedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	rows := []offersrepo.PlanningRow{
		{ProductID: productID, ProductName: "Ceramic coating", TemplateItemID: uuid.New(), MonthsAfter: 6, IsPaid: true, ServiceType: "coating"},
		{ProductID: productID, ProductName: "Ceramic coating", TemplateItemID: uuid.New(), MonthsAfter: 12, IsPaid: false, ServiceType: "coating"},
	}

	planned := PlanSchedule(rows, completedAt)
	if len(planned) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(planned))
	}

	sixMonths := completedAt.Add(time.Duration(6 * 30.44 * 24 * float64(time.Hour)))
	if d := planned[0].ScheduledDate.Sub(sixMonths); d < -time.Second || d > time.Second {
		t.Fatalf("expected 6-month date near %v, got %v", sixMonths, planned[0].ScheduledDate)
	}
	twelveMonths := completedAt.Add(time.Duration(12 * 30.44 * 24 * float64(time.Hour)))
	if d := planned[1].ScheduledDate.Sub(twelveMonths); d < -time.Second || d > time.Second {
		t.Fatalf("expected 12-month date near %v, got %v", twelveMonths, planned[1].ScheduledDate)
	}
	if !planned[0].IsPaid || planned[1].IsPaid {
		t.Fatalf("expected is_paid flags true/false, got %t/%t", planned[0].IsPaid, planned[1].IsPaid)
	}
}

func TestPlanSchedule_DeduplicatesByProductID(t *testing.T) {
	productID := uuid.New()
	entryID := uuid.New()
	completedAt := time.Now()
	// The same product referenced from two different items repeats its
	// template entries in the join result.
	rows := []offersrepo.PlanningRow{
		{ProductID: productID, ProductName: "Wax treatment", TemplateItemID: entryID, MonthsAfter: 3, IsPaid: false, ServiceType: "wax"},
		{ProductID: productID, ProductName: "Wax treatment", TemplateItemID: entryID, MonthsAfter: 3, IsPaid: false, ServiceType: "wax"},
	}

	planned := PlanSchedule(rows, completedAt)
	if len(planned) != 1 {
		t.Fatalf("expected 1 reminder after product dedup, got %d", len(planned))
	}
}

func TestPlanSchedule_IdenticalTemplateEntriesStayDistinct(t *testing.T) {
	productID := uuid.New()
	// One template carrying two entries with the same values: each entry
	// still gets its own reminder.
	rows := []offersrepo.PlanningRow{
		{ProductID: productID, ProductName: "Ceramic coating", TemplateItemID: uuid.New(), MonthsAfter: 6, IsPaid: true, ServiceType: "coating"},
		{ProductID: productID, ProductName: "Ceramic coating", TemplateItemID: uuid.New(), MonthsAfter: 6, IsPaid: true, ServiceType: "coating"},
	}

	planned := PlanSchedule(rows, time.Now())
	if len(planned) != 2 {
		t.Fatalf("expected 2 reminders for two identical template entries, got %d", len(planned))
	}
}

func TestPlanSchedule_FirstOccurrenceNameWins(t *testing.T) {
	productID := uuid.New()
	rows := []offersrepo.PlanningRow{
		{ProductID: productID, ProductName: "Wax treatment", CustomName: strPtr("Showroom wax"), TemplateItemID: uuid.New(), MonthsAfter: 3, ServiceType: "wax"},
		{ProductID: productID, ProductName: "Wax treatment", CustomName: strPtr("Other name"), TemplateItemID: uuid.New(), MonthsAfter: 6, ServiceType: "wax"},
	}

	planned := PlanSchedule(rows, time.Now())
	if len(planned) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(planned))
	}
	for _, p := range planned {
		if p.ServiceName != "Showroom wax" {
			t.Fatalf("expected first custom name to win, got %q", p.ServiceName)
		}
	}
}

func TestPlanSchedule_CustomNameFallsBackToProductName(t *testing.T) {
	rows := []offersrepo.PlanningRow{
		{ProductID: uuid.New(), ProductName: "Interior detail", TemplateItemID: uuid.New(), MonthsAfter: 6, ServiceType: "interior"},
	}

	planned := PlanSchedule(rows, time.Now())
	if len(planned) != 1 || planned[0].ServiceName != "Interior detail" {
		t.Fatalf("expected product name fallback, got %+v", planned)
	}
}

func TestPlanSchedule_TwoProductsKeepSeparateSets(t *testing.T) {
	rows := []offersrepo.PlanningRow{
		{ProductID: uuid.New(), ProductName: "Coating", TemplateItemID: uuid.New(), MonthsAfter: 6, ServiceType: "coating"},
		{ProductID: uuid.New(), ProductName: "Wax", TemplateItemID: uuid.New(), MonthsAfter: 6, ServiceType: "wax"},
	}

	planned := PlanSchedule(rows, time.Now())
	if len(planned) != 2 {
		t.Fatalf("expected 2 reminders across products, got %d", len(planned))
	}
}

func TestPlanSchedule_NoRowsNoReminders(t *testing.T) {
	if planned := PlanSchedule(nil, time.Now()); len(planned) != 0 {
		t.Fatalf("expected empty plan, got %d", len(planned))
	}
}
