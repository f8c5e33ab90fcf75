package core

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNoRecords signals that a year or district/year query matched zero
	// rows. Callers must surface this as "not found", never as an all-zero
	// summary.
	ErrNoRecords = errors.New("no records")
)

type (
	// Metric is a numeric field from the upstream feed that may be absent.
	// Absence ("not reported") is distinct from a reported zero: several
	// aggregation rules key off positivity, and conflating the two would
	// silently change results.
	Metric struct {
		Value float64
		Valid bool
	}

	// District identifies a district and the state it belongs to.
	District struct {
		Name      string `json:"name"`
		StateName string `json:"state_name"`
	}

	// PerformanceRecord is one monthly snapshot for a district and financial
	// year. All metric values are cumulative from the start of the financial
	// year through the named month, not per-month deltas. Monetary fields
	// noted as lakhs must pass through LakhsToRupees at read-out; the wage
	// rate is already in rupees per day.
	PerformanceRecord struct {
		District  string `json:"district"`
		StateName string `json:"state_name"`
		FinYear   string `json:"fin_year"`
		Month     string `json:"month"`

		HouseholdsWorked           Metric `json:"households_worked"`
		IndividualsWorked          Metric `json:"individuals_worked"`
		AvgWageRate                Metric `json:"average_wage_rate"`
		AvgDaysPerHousehold        Metric `json:"average_days_per_household"`
		TotalExpenditure           Metric `json:"total_expenditure"` // lakhs
		Wages                      Metric `json:"wages"`             // lakhs
		MaterialSkilledWages       Metric `json:"material_skilled_wages"` // lakhs
		CompletedWorks             Metric `json:"completed_works"`
		OngoingWorks               Metric `json:"ongoing_works"`
		SCPersondays               Metric `json:"sc_persondays"`
		STPersondays               Metric `json:"st_persondays"`
		WomenPersondays            Metric `json:"women_persondays"`
		CentralLiabilityPersondays Metric `json:"central_liability_persondays"`
		ApprovedLabourBudget       Metric `json:"approved_labour_budget"`
		NilExpGramPanchayats       Metric `json:"nil_exp_gram_panchayats"`
		DifferentlyAbledWorked     Metric `json:"differently_abled_worked"`
		Remarks                    string `json:"remarks,omitempty"`
	}
)

// Reported wraps a value that the upstream feed actually carried.
func Reported(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// OrZero returns the value, treating "not reported" as zero.
func (m Metric) OrZero() float64 {
	if !m.Valid {
		return 0
	}
	return m.Value
}

// Positive reports whether the metric was reported with a value above zero.
func (m Metric) Positive() bool {
	return m.Valid && m.Value > 0
}

// MarshalJSON emits null for unreported metrics so API consumers can tell
// "not reported" from a real zero.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	if err := json.Unmarshal(data, &m.Value); err != nil {
		return err
	}
	m.Valid = true
	return nil
}
