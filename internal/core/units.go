// Package core computes district-level and state-level summaries of MGNREGA
// performance data from raw monthly cumulative records.
//
// This file holds the currency unit conversions. The upstream feed reports
// expenditure, wages and material/skilled wages in lakhs; conversion to
// rupees happens at the point fields are read out of a record, never before.
package core

import "math"

// RupeesPerLakh is the lakh-to-rupee factor (South Asian numbering).
const RupeesPerLakh = 100_000

// LakhsToRupees converts a monetary figure reported in lakhs to rupees.
//
// It applies to total expenditure, wages and material/skilled wages only.
// The average wage rate per day per person is already in rupees and must
// NOT be passed through this conversion.
func LakhsToRupees(lakhs float64) float64 {
	return lakhs * RupeesPerLakh
}

// Round2 rounds to two decimal places, matching how derived rates and
// percentages are published.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
