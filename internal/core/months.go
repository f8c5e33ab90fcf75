package core

import "strings"

// monthRanks orders reporting months within a financial year, which runs
// April (1) through March (12). The upstream feed is inconsistent about
// month spellings, so abbreviations map to the same rank as the full name.
var monthRanks = map[string]int{
	"April":     1,
	"May":       2,
	"June":      3,
	"July":      4,
	"Aug":       5,
	"August":    5,
	"Sep":       6,
	"Sept":      6,
	"September": 6,
	"Oct":       7,
	"October":   7,
	"Nov":       8,
	"November":  8,
	"Dec":       9,
	"December":  9,
	"Jan":       10,
	"January":   10,
	"Feb":       11,
	"February":  11,
	"March":     12,
}

// MonthRank maps a reporting month name to its rank within the financial
// year. Unrecognized month strings rank 0, below every known month, so any
// recognized month outranks them during latest-record selection.
func MonthRank(month string) int {
	return monthRanks[strings.TrimSpace(month)]
}
