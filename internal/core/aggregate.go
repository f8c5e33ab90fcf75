package core

import "math"

type (
	// DistrictSummary is the per-district rollup for one financial year,
	// seeded from that district's latest-month record. Ephemeral: recomputed
	// on every request, never persisted.
	DistrictSummary struct {
		District        string  `json:"district"`
		State           string  `json:"state"`
		ActiveWorkers   int64   `json:"activeWorkers"`
		Households      int64   `json:"households"`
		Persondays      int64   `json:"persondays"`
		WomenPersondays float64 `json:"womenPersondays"`
		AssetsCompleted int64   `json:"assetsCompleted"`
		TotalExpenditure float64 `json:"totalExpenditure"` // rupees
		AvgWageRate      float64 `json:"avgWageRate"`      // rupees/day, latest month

		// PersondaysEstimated marks figures produced by the individuals ×
		// avg-days approximation so consuming UIs can label them as
		// estimates.
		PersondaysEstimated bool `json:"persondaysEstimated"`
	}

	// StateSummary is the additive rollup of a state's district summaries.
	StateSummary struct {
		State            string  `json:"state"`
		ActiveWorkers    int64   `json:"activeWorkers"`
		Persondays       int64   `json:"persondays"`
		AssetsCompleted  int64   `json:"assetsCompleted"`
		TotalExpenditure float64 `json:"totalExpenditure"`
	}

	// OverallSummary holds the year-level headline figures across all
	// districts.
	OverallSummary struct {
		TotalHouseholds           int64   `json:"totalHouseholds"`
		AverageWageRate           float64 `json:"averageWageRate"`
		WomenParticipationPercent float64 `json:"womenParticipationPercent"`
		TotalExpenditure          float64 `json:"totalExpenditure"`
	}

	// YearSummary is the full aggregation output for one financial year.
	YearSummary struct {
		FinYear   string            `json:"fin_year"`
		Districts []DistrictSummary `json:"districtSummaries"`
		States    []StateSummary    `json:"stateSummaries"`
		Overall   OverallSummary    `json:"summary"`
	}

	// DetailSummary is the single-district headline for one financial year.
	// Counts and totals are a snapshot of the latest reporting month; the
	// average wage rate is the mean across all reported months. The two
	// definitions are intentionally different and must stay that way.
	DetailSummary struct {
		AverageWageRate     float64 `json:"averageWageRate"`
		TotalHouseholds     int64   `json:"totalHouseholds"`
		TotalExpenditure    float64 `json:"totalExpenditure"`
		TotalWages          float64 `json:"totalWages"`
		TotalCompletedWorks int64   `json:"totalCompletedWorks"`
		TotalOngoingWorks   int64   `json:"totalOngoingWorks"`
	}
)

// persondaysWorked resolves total persondays for a record through an ordered
// fallback chain; the first tier with a positive value wins:
//
//  1. the reported persondays of central liability;
//  2. the sum of SC + ST + women persondays;
//  3. individuals worked × average days of employment per household.
//
// The third tier is a knowingly imprecise estimate (the avg-days figure is
// per household, not per individual) and is flagged as such. Missing fields
// degrade gracefully instead of failing or reporting spurious zeros.
func persondaysWorked(r PerformanceRecord) (days float64, estimated bool) {
	candidates := []float64{
		r.CentralLiabilityPersondays.OrZero(),
		r.SCPersondays.OrZero() + r.STPersondays.OrZero() + r.WomenPersondays.OrZero(),
	}
	for _, v := range candidates {
		if v > 0 {
			return v, false
		}
	}
	return r.IndividualsWorked.OrZero() * r.AvgDaysPerHousehold.OrZero(), true
}

// meanPositive averages the strictly positive values in rates. Zero and
// negative entries stand for "missing or junk" and are excluded; if nothing
// positive remains the mean is 0.
func meanPositive(rates []float64) float64 {
	var sum float64
	var n int
	for _, r := range rates {
		if r > 0 {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// summarizeDistrictRecords builds one DistrictSummary from a district's
// records for the year.
func summarizeDistrictRecords(records []PerformanceRecord) (DistrictSummary, error) {
	latest, err := LatestRecord(records)
	if err != nil {
		return DistrictSummary{}, err
	}
	days, estimated := persondaysWorked(latest)
	return DistrictSummary{
		District:            latest.District,
		State:               latest.StateName,
		ActiveWorkers:       int64(latest.IndividualsWorked.OrZero()),
		Households:          int64(latest.HouseholdsWorked.OrZero()),
		Persondays:          int64(math.Round(days)),
		WomenPersondays:     latest.WomenPersondays.OrZero(),
		AssetsCompleted:     int64(latest.CompletedWorks.OrZero()),
		TotalExpenditure:    LakhsToRupees(latest.TotalExpenditure.OrZero()),
		AvgWageRate:         latest.AvgWageRate.OrZero(),
		PersondaysEstimated: estimated,
	}, nil
}

// SummarizeYear aggregates all records for one financial year into district
// summaries, state rollups and the year-level overall figures.
//
// Records are grouped by district; each district contributes its latest
// reporting month. Districts keep their first-seen input order, so the
// store's district-name ordering carries through to the output. An empty
// record set returns ErrNoRecords: "no data for year" is distinct from a
// year whose records are all null metrics.
func SummarizeYear(finYear string, records []PerformanceRecord) (YearSummary, error) {
	if len(records) == 0 {
		return YearSummary{}, ErrNoRecords
	}

	byDistrict := make(map[string][]PerformanceRecord)
	var order []string
	for _, r := range records {
		if _, seen := byDistrict[r.District]; !seen {
			order = append(order, r.District)
		}
		byDistrict[r.District] = append(byDistrict[r.District], r)
	}

	summary := YearSummary{FinYear: finYear}
	var wageRates []float64
	var persondaysSum, womenPersondaysSum float64
	for _, name := range order {
		ds, err := summarizeDistrictRecords(byDistrict[name])
		if err != nil {
			return YearSummary{}, err
		}
		summary.Districts = append(summary.Districts, ds)

		summary.Overall.TotalHouseholds += ds.Households
		summary.Overall.TotalExpenditure += ds.TotalExpenditure
		persondaysSum += float64(ds.Persondays)
		womenPersondaysSum += ds.WomenPersondays
		wageRates = append(wageRates, ds.AvgWageRate)
	}

	// Simple mean over contributing rates, not weighted by scale. Rates of
	// zero stand for "not reported" and are excluded.
	summary.Overall.AverageWageRate = Round2(meanPositive(wageRates))
	if persondaysSum > 0 {
		summary.Overall.WomenParticipationPercent = Round2(womenPersondaysSum / persondaysSum * 100)
	}

	summary.States = SummarizeStates(summary.Districts)
	return summary, nil
}

// SummarizeStates groups district summaries by state name and sums workers,
// persondays, completed assets and expenditure. Purely additive, so the
// totals are independent of input order; states appear in first-seen order.
func SummarizeStates(districts []DistrictSummary) []StateSummary {
	index := make(map[string]int)
	var states []StateSummary
	for _, d := range districts {
		i, ok := index[d.State]
		if !ok {
			i = len(states)
			index[d.State] = i
			states = append(states, StateSummary{State: d.State})
		}
		states[i].ActiveWorkers += d.ActiveWorkers
		states[i].Persondays += d.Persondays
		states[i].AssetsCompleted += d.AssetsCompleted
		states[i].TotalExpenditure += d.TotalExpenditure
	}
	return states
}

// SummarizeDistrict builds the single-district detail headline from all of
// one district's records for a year.
//
// Counts and monetary totals come from the latest reporting month (the
// cumulative snapshot); the average wage rate is the longitudinal mean of
// the rate across every reported month, non-positive values excluded.
func SummarizeDistrict(records []PerformanceRecord) (DetailSummary, error) {
	latest, err := LatestRecord(records)
	if err != nil {
		return DetailSummary{}, err
	}

	rates := make([]float64, 0, len(records))
	for _, r := range records {
		rates = append(rates, r.AvgWageRate.OrZero())
	}

	return DetailSummary{
		AverageWageRate:     Round2(meanPositive(rates)),
		TotalHouseholds:     int64(latest.HouseholdsWorked.OrZero()),
		TotalExpenditure:    LakhsToRupees(latest.TotalExpenditure.OrZero()),
		TotalWages:          LakhsToRupees(latest.Wages.OrZero()),
		TotalCompletedWorks: int64(latest.CompletedWorks.OrZero()),
		TotalOngoingWorks:   int64(latest.OngoingWorks.OrZero()),
	}, nil
}
