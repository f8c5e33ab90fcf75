package services

import (
	"context"
	"fmt"
	"log/slog"

	"nregadash/internal/core"
)

// RecordStore is the query surface of the record store. The aggregation
// core consumes it read-only.
type RecordStore interface {
	PerformanceByYear(ctx context.Context, finYear string) ([]core.PerformanceRecord, error)
	PerformanceByDistrictAndYear(ctx context.Context, district, finYear string) ([]core.PerformanceRecord, error)
	DistinctYears(ctx context.Context) ([]string, error)
	Districts(ctx context.Context) ([]core.District, error)
}

type (
	// YearReport is everything the dashboard needs for one financial year:
	// the raw records plus the derived summaries, computed fresh per call.
	YearReport struct {
		FinYear           string                   `json:"fin_year"`
		Records           []core.PerformanceRecord `json:"data"`
		Summary           core.OverallSummary      `json:"summary"`
		DistrictSummaries []core.DistrictSummary   `json:"districtSummaries"`
		StateSummaries    []core.StateSummary      `json:"stateSummaries"`
	}

	// DistrictReport is the single-district detail view for one year.
	DistrictReport struct {
		District string                   `json:"district"`
		FinYear  string                   `json:"fin_year"`
		Records  []core.PerformanceRecord `json:"records"`
		Summary  core.DetailSummary       `json:"summary"`
	}
)

// PerformanceService computes dashboard reports from the record store.
// Stateless: every call reads one year's rows and aggregates in memory.
type PerformanceService struct {
	store RecordStore
}

func NewPerformanceService(store RecordStore) *PerformanceService {
	return &PerformanceService{store: store}
}

// YearReport builds the all-districts report for a financial year. Returns
// core.ErrNoRecords when the year matches nothing in the store; a store
// failure is propagated as-is.
func (s *PerformanceService) YearReport(ctx context.Context, finYear string) (YearReport, error) {
	records, err := s.store.PerformanceByYear(ctx, finYear)
	if err != nil {
		return YearReport{}, fmt.Errorf("load records for %s: %w", finYear, err)
	}

	summary, err := core.SummarizeYear(finYear, records)
	if err != nil {
		return YearReport{}, fmt.Errorf("summarize year %s: %w", finYear, err)
	}

	slog.DebugContext(ctx, "Year report computed",
		"fin_year", finYear,
		"records", len(records),
		"districts", len(summary.Districts))

	return YearReport{
		FinYear:           finYear,
		Records:           records,
		Summary:           summary.Overall,
		DistrictSummaries: summary.Districts,
		StateSummaries:    summary.States,
	}, nil
}

// DistrictReport builds the detail report for one district and year.
// Returns core.ErrNoRecords when the combination matches nothing.
func (s *PerformanceService) DistrictReport(ctx context.Context, district, finYear string) (DistrictReport, error) {
	records, err := s.store.PerformanceByDistrictAndYear(ctx, district, finYear)
	if err != nil {
		return DistrictReport{}, fmt.Errorf("load records for %s/%s: %w", district, finYear, err)
	}

	summary, err := core.SummarizeDistrict(records)
	if err != nil {
		return DistrictReport{}, fmt.Errorf("summarize district %s/%s: %w", district, finYear, err)
	}

	return DistrictReport{
		District: district,
		FinYear:  finYear,
		Records:  records,
		Summary:  summary,
	}, nil
}

// Districts lists the known districts ascending by name.
func (s *PerformanceService) Districts(ctx context.Context) ([]core.District, error) {
	districts, err := s.store.Districts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	return districts, nil
}

// Years lists the financial years with data, newest first.
func (s *PerformanceService) Years(ctx context.Context) ([]string, error) {
	years, err := s.store.DistinctYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}
