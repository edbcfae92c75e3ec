package service

import (
	"math"
	"strconv"
	"strings"

	"washdesk_backend/platform/apperr"
)

// vatMultiplier converts an integer VAT percentage into a gross multiplier.
func vatMultiplier(vatRate int) float64 {
	return 1.0 + float64(vatRate)/100.0
}

// roundCents rounds a float to the nearest cent. math.Round rounds half away
// from zero, which is the documented rounding mode for all money in this module.
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// parseAmountCents parses a user-typed decimal amount ("1234.50", "1234,50")
// into cents. Returns false for empty or unparsable input.
func parseAmountCents(s string) (int64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return roundCents(v * 100), true
}

// ReconcileApprovedTotals derives the consistent (net, gross) pair from
// manually edited amounts. The field the admin edited last wins; the other
// side is recomputed under the VAT multiplier so the pair always satisfies
// gross = round(net × (1 + vat/100)). Rejected with a validation error unless
// at least one side parses to a positive amount.
func ReconcileApprovedTotals(netInput, grossInput, lastEdited string, vatRate int) (netCents int64, grossCents int64, err error) {
	net, netOK := parseAmountCents(netInput)
	gross, grossOK := parseAmountCents(grossInput)
	netPositive := netOK && net > 0
	grossPositive := grossOK && gross > 0

	if !netPositive && !grossPositive {
		return 0, 0, apperr.Validation("either net or gross must be a positive amount")
	}

	m := vatMultiplier(vatRate)
	switch {
	case lastEdited == "gross" && grossPositive:
		net = roundCents(float64(gross) / m)
	case netPositive:
		gross = roundCents(float64(net) * m)
	default:
		net = roundCents(float64(gross) / m)
	}
	return net, gross, nil
}
