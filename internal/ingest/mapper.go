package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"nregadash/internal/core"
)

// The platform has shipped the same resource with differently cased
// field names over the years, so every metric is looked up under all
// known spellings.

// firstDefined returns the first key present with a non-empty value.
func firstDefined(raw map[string]json.RawMessage, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		s := decodeScalar(v)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// decodeScalar renders a JSON scalar as its text form. The feed mixes
// quoted and bare numbers freely.
func decodeScalar(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// toMetric parses a number that may carry thousands separators.
// Unparseable or missing values become "not reported".
func toMetric(raw map[string]json.RawMessage, keys ...string) core.Metric {
	s, ok := firstDefined(raw, keys...)
	if !ok {
		return core.Metric{}
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return core.Metric{}
	}
	return core.Reported(n)
}

// toCountMetric is toMetric with the fraction dropped, for fields that
// are counts but occasionally arrive with decimals.
func toCountMetric(raw map[string]json.RawMessage, keys ...string) core.Metric {
	m := toMetric(raw, keys...)
	if !m.Valid {
		return m
	}
	return core.Reported(math.Trunc(m.Value))
}

// MapRecord converts one raw feed record into a PerformanceRecord.
// Records without a district name or month are unusable and reported
// as not ok.
func MapRecord(raw map[string]json.RawMessage, finYear string) (core.PerformanceRecord, bool) {
	district, _ := firstDefined(raw, "district_name", "District_Name")
	month, _ := firstDefined(raw, "month", "Month")
	if district == "" || month == "" {
		return core.PerformanceRecord{}, false
	}
	state, _ := firstDefined(raw, "state_name", "State_Name")
	remarks, _ := firstDefined(raw, "Remarks", "remarks")

	rec := core.PerformanceRecord{
		District:  district,
		StateName: state,
		FinYear:   finYear,
		Month:     month,

		HouseholdsWorked:           toCountMetric(raw, "Total_Households_Worked", "total_households_worked"),
		IndividualsWorked:          toCountMetric(raw, "Total_Individuals_Worked", "total_individuals_worked"),
		AvgWageRate:                toMetric(raw, "Average_Wage_rate_per_day_per_person", "average_wage_rate_per_day_per_person"),
		AvgDaysPerHousehold:        toMetric(raw, "Average_days_of_employment_provided_per_Household", "average_days_of_employment_provided_per_household"),
		TotalExpenditure:           toMetric(raw, "Total_Exp", "total_exp"),
		Wages:                      toMetric(raw, "Wages", "wages"),
		MaterialSkilledWages:       toMetric(raw, "Material_and_skilled_Wages", "material_and_skilled_wages"),
		CompletedWorks:             toCountMetric(raw, "Number_of_Completed_Works", "number_of_completed_works"),
		OngoingWorks:               toCountMetric(raw, "Number_of_Ongoing_Works", "number_of_ongoing_works"),
		SCPersondays:               toMetric(raw, "SC_persondays", "sc_persondays"),
		STPersondays:               toMetric(raw, "ST_persondays", "st_persondays"),
		WomenPersondays:            toMetric(raw, "Women_Persondays", "women_persondays"),
		CentralLiabilityPersondays: toMetric(raw, "Persondays_of_Central_Liability_so_far", "persondays_of_central_liability_so_far"),
		ApprovedLabourBudget:       toMetric(raw, "Approved_Labour_Budget", "approved_labour_budget"),
		NilExpGramPanchayats:       toCountMetric(raw, "Number_of_GPs_with_NIL_exp", "number_of_gps_with_nil_exp"),
		DifferentlyAbledWorked:     toCountMetric(raw, "Differently_abled_persons_worked", "differently_abled_persons_worked"),
		Remarks:                    remarks,
	}
	return rec, true
}
