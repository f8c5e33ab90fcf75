package ingest

import (
	"encoding/json"
	"testing"
)

func rawRecord(fields map[string]any) map[string]json.RawMessage {
	raw := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		raw[k] = b
	}
	return raw
}

func TestMapRecord(t *testing.T) {
	raw := rawRecord(map[string]any{
		"district_name":                        "ANANTAPUR",
		"state_name":                           "ANDHRA PRADESH",
		"month":                                "April",
		"Total_Households_Worked":              "1,234",
		"Total_Individuals_Worked":             2500.7,
		"Average_Wage_rate_per_day_per_person": "245.5",
		"Total_Exp":                            "1200.25",
		"Women_Persondays":                     "45000",
		"Number_of_Completed_Works":            "10.9",
		"Remarks":                              "ok",
	})

	rec, ok := MapRecord(raw, "2023-2024")
	if !ok {
		t.Fatal("MapRecord() ok = false, want true")
	}

	if rec.District != "ANANTAPUR" {
		t.Errorf("District = %q, want ANANTAPUR", rec.District)
	}
	if rec.StateName != "ANDHRA PRADESH" {
		t.Errorf("StateName = %q, want ANDHRA PRADESH", rec.StateName)
	}
	if rec.FinYear != "2023-2024" {
		t.Errorf("FinYear = %q, want 2023-2024", rec.FinYear)
	}
	if rec.Month != "April" {
		t.Errorf("Month = %q, want April", rec.Month)
	}
	if !rec.HouseholdsWorked.Valid || rec.HouseholdsWorked.Value != 1234 {
		t.Errorf("HouseholdsWorked = %+v, want 1234 (comma stripped)", rec.HouseholdsWorked)
	}
	if !rec.IndividualsWorked.Valid || rec.IndividualsWorked.Value != 2500 {
		t.Errorf("IndividualsWorked = %+v, want 2500 (truncated)", rec.IndividualsWorked)
	}
	if !rec.AvgWageRate.Valid || rec.AvgWageRate.Value != 245.5 {
		t.Errorf("AvgWageRate = %+v, want 245.5", rec.AvgWageRate)
	}
	if !rec.TotalExpenditure.Valid || rec.TotalExpenditure.Value != 1200.25 {
		t.Errorf("TotalExpenditure = %+v, want 1200.25", rec.TotalExpenditure)
	}
	if !rec.CompletedWorks.Valid || rec.CompletedWorks.Value != 10 {
		t.Errorf("CompletedWorks = %+v, want 10 (truncated)", rec.CompletedWorks)
	}
	if rec.Wages.Valid {
		t.Errorf("Wages = %+v, want not reported", rec.Wages)
	}
	if rec.Remarks != "ok" {
		t.Errorf("Remarks = %q, want ok", rec.Remarks)
	}
}

func TestMapRecord_FieldNameVariants(t *testing.T) {
	raw := rawRecord(map[string]any{
		"District_Name":    "KURNOOL",
		"Month":            "May",
		"total_exp":        "300",
		"average_wage_rate_per_day_per_person": 210,
	})

	rec, ok := MapRecord(raw, "2023-2024")
	if !ok {
		t.Fatal("MapRecord() ok = false, want true")
	}
	if rec.District != "KURNOOL" {
		t.Errorf("District = %q, want KURNOOL (capitalized variant)", rec.District)
	}
	if !rec.TotalExpenditure.Valid || rec.TotalExpenditure.Value != 300 {
		t.Errorf("TotalExpenditure = %+v, want 300 (lowercase variant)", rec.TotalExpenditure)
	}
	if !rec.AvgWageRate.Valid || rec.AvgWageRate.Value != 210 {
		t.Errorf("AvgWageRate = %+v, want 210 (bare number)", rec.AvgWageRate)
	}
}

func TestMapRecord_SkipsUnusable(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"missing district", map[string]any{"month": "April", "state_name": "X"}},
		{"missing month", map[string]any{"district_name": "Alpha", "state_name": "X"}},
		{"empty district", map[string]any{"district_name": "  ", "month": "April"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := MapRecord(rawRecord(tt.fields), "2023-2024"); ok {
				t.Error("MapRecord() ok = true, want false")
			}
		})
	}
}

func TestMapRecord_UnparseableMetricIsNotReported(t *testing.T) {
	raw := rawRecord(map[string]any{
		"district_name": "Alpha",
		"month":         "April",
		"Total_Exp":     "n/a",
	})

	rec, ok := MapRecord(raw, "2023-2024")
	if !ok {
		t.Fatal("MapRecord() ok = false, want true")
	}
	if rec.TotalExpenditure.Valid {
		t.Errorf("TotalExpenditure = %+v, want not reported for unparseable input", rec.TotalExpenditure)
	}
}
