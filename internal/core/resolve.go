package core

// LatestRecord selects the record for the latest reporting month from a set
// of records sharing a district and financial year. Because values are
// cumulative, that record carries the period's totals.
//
// Ties on month rank keep the first record in input order; records with an
// unrecognized month (rank 0) are still eligible when nothing outranks them.
// An empty input returns ErrNoRecords.
func LatestRecord(records []PerformanceRecord) (PerformanceRecord, error) {
	if len(records) == 0 {
		return PerformanceRecord{}, ErrNoRecords
	}
	latest := records[0]
	best := MonthRank(latest.Month)
	for _, r := range records[1:] {
		if rank := MonthRank(r.Month); rank > best {
			best = rank
			latest = r
		}
	}
	return latest, nil
}
