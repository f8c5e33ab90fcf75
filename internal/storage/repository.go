package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nregadash/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the record store: one row per (district, financial
// year, month) holding the raw cumulative metrics pulled from the open-data
// feed. The aggregation core consumes it read-only; only the ingest command
// writes.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const recordColumns = `
	d.name, d.state_name, p.fin_year, p.month,
	p.households_worked, p.individuals_worked, p.average_wage_rate,
	p.average_days_per_household, p.total_expenditure, p.wages,
	p.material_skilled_wages, p.completed_works, p.ongoing_works,
	p.sc_persondays, p.st_persondays, p.women_persondays,
	p.central_liability_persondays, p.approved_labour_budget,
	p.nil_exp_gram_panchayats, p.differently_abled_worked, p.remarks`

// PerformanceByYear returns every record for a financial year joined with
// district identity, ordered by district name then month. The ordering is
// for readability only; the aggregation does not rely on it.
func (r *SQLiteRepository) PerformanceByYear(ctx context.Context, finYear string) ([]core.PerformanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM performance_records p
		JOIN districts d ON d.id = p.district_id
		WHERE p.fin_year = ?
		ORDER BY d.name, p.month`, finYear)
	if err != nil {
		return nil, fmt.Errorf("query performance by year: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// PerformanceByDistrictAndYear returns one district's records for a
// financial year, ordered by month.
func (r *SQLiteRepository) PerformanceByDistrictAndYear(ctx context.Context, district, finYear string) ([]core.PerformanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM performance_records p
		JOIN districts d ON d.id = p.district_id
		WHERE d.name = ? AND p.fin_year = ?
		ORDER BY p.month`, district, finYear)
	if err != nil {
		return nil, fmt.Errorf("query performance by district and year: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// DistinctYears lists the financial years present in the store, newest
// first.
func (r *SQLiteRepository) DistinctYears(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT fin_year FROM performance_records ORDER BY fin_year DESC`)
	if err != nil {
		return nil, fmt.Errorf("query distinct years: %w", err)
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Districts lists all known districts ascending by name.
func (r *SQLiteRepository) Districts(ctx context.Context) ([]core.District, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, state_name FROM districts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query districts: %w", err)
	}
	defer rows.Close()

	var districts []core.District
	for rows.Next() {
		var d core.District
		if err := rows.Scan(&d.Name, &d.StateName); err != nil {
			return nil, fmt.Errorf("scan district: %w", err)
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

// UpsertDistrict creates or refreshes a district row and returns its id.
func (r *SQLiteRepository) UpsertDistrict(ctx context.Context, name, stateName string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO districts (name, state_name) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET state_name = excluded.state_name
		RETURNING id`, name, stateName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert district %s: %w", name, err)
	}
	return id, nil
}

// UpsertPerformance writes one monthly record, replacing any existing row
// with the same (district, fin_year, month) natural key. Re-ingesting a year
// is therefore idempotent.
func (r *SQLiteRepository) UpsertPerformance(ctx context.Context, districtID int64, rec core.PerformanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO performance_records (
			district_id, fin_year, month,
			households_worked, individuals_worked, average_wage_rate,
			average_days_per_household, total_expenditure, wages,
			material_skilled_wages, completed_works, ongoing_works,
			sc_persondays, st_persondays, women_persondays,
			central_liability_persondays, approved_labour_budget,
			nil_exp_gram_panchayats, differently_abled_worked, remarks
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (district_id, fin_year, month) DO UPDATE SET
			households_worked = excluded.households_worked,
			individuals_worked = excluded.individuals_worked,
			average_wage_rate = excluded.average_wage_rate,
			average_days_per_household = excluded.average_days_per_household,
			total_expenditure = excluded.total_expenditure,
			wages = excluded.wages,
			material_skilled_wages = excluded.material_skilled_wages,
			completed_works = excluded.completed_works,
			ongoing_works = excluded.ongoing_works,
			sc_persondays = excluded.sc_persondays,
			st_persondays = excluded.st_persondays,
			women_persondays = excluded.women_persondays,
			central_liability_persondays = excluded.central_liability_persondays,
			approved_labour_budget = excluded.approved_labour_budget,
			nil_exp_gram_panchayats = excluded.nil_exp_gram_panchayats,
			differently_abled_worked = excluded.differently_abled_worked,
			remarks = excluded.remarks`,
		districtID, rec.FinYear, rec.Month,
		nullable(rec.HouseholdsWorked), nullable(rec.IndividualsWorked), nullable(rec.AvgWageRate),
		nullable(rec.AvgDaysPerHousehold), nullable(rec.TotalExpenditure), nullable(rec.Wages),
		nullable(rec.MaterialSkilledWages), nullable(rec.CompletedWorks), nullable(rec.OngoingWorks),
		nullable(rec.SCPersondays), nullable(rec.STPersondays), nullable(rec.WomenPersondays),
		nullable(rec.CentralLiabilityPersondays), nullable(rec.ApprovedLabourBudget),
		nullable(rec.NilExpGramPanchayats), nullable(rec.DifferentlyAbledWorked), rec.Remarks)
	if err != nil {
		return fmt.Errorf("upsert performance %s/%s/%s: %w", rec.District, rec.FinYear, rec.Month, err)
	}

	slog.DebugContext(ctx, "Performance record saved",
		"district", rec.District,
		"fin_year", rec.FinYear,
		"month", rec.Month)
	return nil
}

func scanRecords(rows *sql.Rows) ([]core.PerformanceRecord, error) {
	var records []core.PerformanceRecord
	for rows.Next() {
		var rec core.PerformanceRecord
		var (
			households, individuals, wageRate, avgDays         sql.NullFloat64
			totalExp, wages, materialWages, completed, ongoing sql.NullFloat64
			sc, st, women, centralLiability, labourBudget      sql.NullFloat64
			nilExpGPs, differentlyAbled                        sql.NullFloat64
			remarks                                            sql.NullString
		)
		err := rows.Scan(
			&rec.District, &rec.StateName, &rec.FinYear, &rec.Month,
			&households, &individuals, &wageRate, &avgDays, &totalExp, &wages,
			&materialWages, &completed, &ongoing, &sc, &st, &women,
			&centralLiability, &labourBudget, &nilExpGPs, &differentlyAbled,
			&remarks)
		if err != nil {
			return nil, fmt.Errorf("scan performance record: %w", err)
		}
		rec.HouseholdsWorked = metric(households)
		rec.IndividualsWorked = metric(individuals)
		rec.AvgWageRate = metric(wageRate)
		rec.AvgDaysPerHousehold = metric(avgDays)
		rec.TotalExpenditure = metric(totalExp)
		rec.Wages = metric(wages)
		rec.MaterialSkilledWages = metric(materialWages)
		rec.CompletedWorks = metric(completed)
		rec.OngoingWorks = metric(ongoing)
		rec.SCPersondays = metric(sc)
		rec.STPersondays = metric(st)
		rec.WomenPersondays = metric(women)
		rec.CentralLiabilityPersondays = metric(centralLiability)
		rec.ApprovedLabourBudget = metric(labourBudget)
		rec.NilExpGramPanchayats = metric(nilExpGPs)
		rec.DifferentlyAbledWorked = metric(differentlyAbled)
		rec.Remarks = remarks.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// metric converts a scanned NULLable column into a core.Metric, preserving
// the reported-zero vs not-reported distinction.
func metric(n sql.NullFloat64) core.Metric {
	return core.Metric{Value: n.Float64, Valid: n.Valid}
}

// nullable converts a core.Metric into a driver value, writing NULL for
// unreported fields.
func nullable(m core.Metric) any {
	if !m.Valid {
		return nil
	}
	return m.Value
}
