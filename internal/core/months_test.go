package core

import "testing"

func TestMonthRank(t *testing.T) {
	tests := []struct {
		month string
		want  int
	}{
		{"April", 1},
		{"May", 2},
		{"June", 3},
		{"July", 4},
		{"Aug", 5},
		{"August", 5},
		{"Sep", 6},
		{"Sept", 6},
		{"September", 6},
		{"Oct", 7},
		{"October", 7},
		{"Nov", 8},
		{"November", 8},
		{"Dec", 9},
		{"December", 9},
		{"Jan", 10},
		{"January", 10},
		{"Feb", 11},
		{"February", 11},
		{"March", 12},
	}
	for _, tt := range tests {
		if got := MonthRank(tt.month); got != tt.want {
			t.Errorf("MonthRank(%q) = %d, want %d", tt.month, got, tt.want)
		}
	}
}

func TestMonthRankUnknown(t *testing.T) {
	for _, month := range []string{"", "Smarch", "april", "13"} {
		if got := MonthRank(month); got != 0 {
			t.Errorf("MonthRank(%q) = %d, want 0", month, got)
		}
	}
}

func TestMonthRankTrimsWhitespace(t *testing.T) {
	if got := MonthRank(" August "); got != 5 {
		t.Errorf("MonthRank(\" August \") = %d, want 5", got)
	}
}

func TestMonthRankOrdering(t *testing.T) {
	// April through March must be strictly increasing.
	year := []string{"April", "May", "June", "July", "August", "September",
		"October", "November", "December", "January", "February", "March"}
	prev := 0
	for _, m := range year {
		rank := MonthRank(m)
		if rank <= prev {
			t.Fatalf("rank of %s (%d) not above previous month (%d)", m, rank, prev)
		}
		prev = rank
	}
}
