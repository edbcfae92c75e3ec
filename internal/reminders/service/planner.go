package service

import (
	"time"

	offersrepo "washdesk_backend/internal/offers/repository"
)

// hoursPerMonth uses the 30.44-day average month. This is a deliberate
// approximation, not calendar-month arithmetic: a 6-month reminder lands
// 182.64 days after completion regardless of which months it spans. The
// follow-up rescheduler intentionally uses calendar months instead; the two
// interval semantics are independent and must not be unified.
const hoursPerMonth = 30.44 * 24

// PlannedReminder is one reminder the planner wants persisted
type PlannedReminder struct {
	ServiceName   string
	ScheduledDate time.Time
	MonthsAfter   int
	IsPaid        bool
	ServiceType   string
}

// PlanSchedule materializes the reminder schedule from the selected items'
// template entries. Grouping is by product id: the same product selected
// through two different items yields a single reminder set, and the first
// item's custom name wins the display name.
func PlanSchedule(rows []offersrepo.PlanningRow, completedAt time.Time) []PlannedReminder {
	nameByProduct := make(map[string]string)
	seenEntries := make(map[string]bool)

	var planned []PlannedReminder
	for _, row := range rows {
		productKey := row.ProductID.String()
		if _, ok := nameByProduct[productKey]; !ok {
			name := row.ProductName
			if row.CustomName != nil && *row.CustomName != "" {
				name = *row.CustomName
			}
			nameByProduct[productKey] = name
		}

		// A product referenced from several items repeats its template
		// entries; each (product, template entry) pair is materialized once.
		// Keying on the entry id keeps two identical entries within one
		// template as two reminders.
		entryKey := productKey + "|" + row.TemplateItemID.String()
		if seenEntries[entryKey] {
			continue
		}
		seenEntries[entryKey] = true

		planned = append(planned, PlannedReminder{
			ServiceName:   nameByProduct[productKey],
			ScheduledDate: scheduledDate(completedAt, row.MonthsAfter),
			MonthsAfter:   row.MonthsAfter,
			IsPaid:        row.IsPaid,
			ServiceType:   row.ServiceType,
		})
	}
	return planned
}

// scheduledDate offsets the completion time by months × 30.44 days.
func scheduledDate(completedAt time.Time, months int) time.Time {
	return completedAt.Add(time.Duration(float64(months) * hoursPerMonth * float64(time.Hour)))
}
