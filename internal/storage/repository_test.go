package storage

import (
	"context"
	"path/filepath"
	"testing"

	"nregadash/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedRecord(t *testing.T, repo *SQLiteRepository, district, state, finYear, month string, wageRate core.Metric) {
	t.Helper()
	ctx := context.Background()
	id, err := repo.UpsertDistrict(ctx, district, state)
	if err != nil {
		t.Fatalf("upsert district: %v", err)
	}
	rec := core.PerformanceRecord{
		District: district, StateName: state, FinYear: finYear, Month: month,
		AvgWageRate:      wageRate,
		HouseholdsWorked: core.Reported(10),
	}
	if err := repo.UpsertPerformance(ctx, id, rec); err != nil {
		t.Fatalf("upsert performance: %v", err)
	}
}

func TestPerformanceByYear(t *testing.T) {
	repo := newTestRepo(t)
	seedRecord(t, repo, "Beta", "X", "2023-2024", "April", core.Reported(210))
	seedRecord(t, repo, "Alpha", "X", "2023-2024", "April", core.Reported(200))
	seedRecord(t, repo, "Alpha", "X", "2023-2024", "May", core.Reported(220))
	seedRecord(t, repo, "Alpha", "X", "2022-2023", "April", core.Reported(180))

	records, err := repo.PerformanceByYear(context.Background(), "2023-2024")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Ordered by district name first.
	if records[0].District != "Alpha" || records[2].District != "Beta" {
		t.Errorf("unexpected district order: %s … %s", records[0].District, records[2].District)
	}
	if records[0].StateName != "X" {
		t.Errorf("district join lost state name: %q", records[0].StateName)
	}
}

func TestPerformanceByYearEmpty(t *testing.T) {
	repo := newTestRepo(t)
	records, err := repo.PerformanceByYear(context.Background(), "2019-2020")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want none", len(records))
	}
}

func TestPerformanceByDistrictAndYear(t *testing.T) {
	repo := newTestRepo(t)
	seedRecord(t, repo, "Alpha", "X", "2023-2024", "April", core.Reported(200))
	seedRecord(t, repo, "Alpha", "X", "2023-2024", "May", core.Reported(220))
	seedRecord(t, repo, "Beta", "X", "2023-2024", "April", core.Reported(210))

	records, err := repo.PerformanceByDistrictAndYear(context.Background(), "Alpha", "2023-2024")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.District != "Alpha" {
			t.Errorf("got record for %q, want Alpha only", r.District)
		}
	}
}

func TestUpsertPerformanceIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id, err := repo.UpsertDistrict(ctx, "Alpha", "X")
	if err != nil {
		t.Fatalf("upsert district: %v", err)
	}

	rec := core.PerformanceRecord{
		District: "Alpha", StateName: "X", FinYear: "2023-2024", Month: "April",
		AvgWageRate: core.Reported(200),
	}
	if err := repo.UpsertPerformance(ctx, id, rec); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	rec.AvgWageRate = core.Reported(205)
	if err := repo.UpsertPerformance(ctx, id, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	records, err := repo.PerformanceByDistrictAndYear(ctx, "Alpha", "2023-2024")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after re-upsert, want 1", len(records))
	}
	if got := records[0].AvgWageRate.OrZero(); got != 205 {
		t.Errorf("wage rate = %v, want updated 205", got)
	}
}

func TestUpsertDistrictStableID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id1, err := repo.UpsertDistrict(ctx, "Alpha", "X")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	id2, err := repo.UpsertDistrict(ctx, "Alpha", "X renamed")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Errorf("district id changed across upserts: %d vs %d", id1, id2)
	}
}

func TestNullMetricsSurviveRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id, err := repo.UpsertDistrict(ctx, "Alpha", "X")
	if err != nil {
		t.Fatalf("upsert district: %v", err)
	}
	rec := core.PerformanceRecord{
		District: "Alpha", StateName: "X", FinYear: "2023-2024", Month: "April",
		TotalExpenditure: core.Reported(0), // reported zero
		// Wages left unreported
	}
	if err := repo.UpsertPerformance(ctx, id, rec); err != nil {
		t.Fatalf("upsert performance: %v", err)
	}

	records, err := repo.PerformanceByYear(ctx, "2023-2024")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if !got.TotalExpenditure.Valid || got.TotalExpenditure.Value != 0 {
		t.Errorf("reported zero came back as %+v", got.TotalExpenditure)
	}
	if got.Wages.Valid {
		t.Errorf("unreported field came back reported: %+v", got.Wages)
	}
}

func TestDistinctYearsAndDistricts(t *testing.T) {
	repo := newTestRepo(t)
	seedRecord(t, repo, "Beta", "X", "2022-2023", "April", core.Reported(180))
	seedRecord(t, repo, "Alpha", "X", "2023-2024", "April", core.Reported(200))

	years, err := repo.DistinctYears(context.Background())
	if err != nil {
		t.Fatalf("distinct years: %v", err)
	}
	if len(years) != 2 || years[0] != "2023-2024" || years[1] != "2022-2023" {
		t.Errorf("years = %v, want [2023-2024 2022-2023] (descending)", years)
	}

	districts, err := repo.Districts(context.Background())
	if err != nil {
		t.Fatalf("districts: %v", err)
	}
	if len(districts) != 2 || districts[0].Name != "Alpha" || districts[1].Name != "Beta" {
		t.Errorf("districts = %v, want Alpha then Beta (ascending)", districts)
	}
}
