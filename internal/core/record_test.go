package core

import (
	"encoding/json"
	"testing"
)

func TestMetricOrZero(t *testing.T) {
	if got := (Metric{}).OrZero(); got != 0 {
		t.Errorf("unreported OrZero() = %v, want 0", got)
	}
	if got := Reported(42.5).OrZero(); got != 42.5 {
		t.Errorf("OrZero() = %v, want 42.5", got)
	}
}

func TestMetricPositive(t *testing.T) {
	tests := []struct {
		m    Metric
		want bool
	}{
		{Metric{}, false},
		{Reported(0), false},  // reported zero is not positive
		{Reported(-1), false},
		{Reported(0.01), true},
	}
	for _, tt := range tests {
		if got := tt.m.Positive(); got != tt.want {
			t.Errorf("Positive(%+v) = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestMetricJSONDistinguishesNullFromZero(t *testing.T) {
	type pair struct {
		Reported   Metric `json:"reported"`
		Unreported Metric `json:"unreported"`
	}
	out, err := json.Marshal(pair{Reported: Reported(0)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"reported":0,"unreported":null}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}

	var back pair
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Reported.Valid || back.Unreported.Valid {
		t.Errorf("round trip lost validity: %+v", back)
	}
}
