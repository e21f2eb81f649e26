package domain

import (
	"testing"
	"time"
)

func window(startDay, endDay int) Window {
	return Window{
		Start: time.Date(2024, 6, startDay, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, endDay, 23, 59, 59, 0, time.UTC),
	}
}

func TestWindowKeys(t *testing.T) {
	w := window(5, 25)

	if w.StartKey() != "2024-06-05 00:00:00" {
		t.Errorf("Unexpected start key %s", w.StartKey())
	}
	if w.EndKey() != "2024-06-25 23:59:59" {
		t.Errorf("Unexpected end key %s", w.EndKey())
	}
}

func TestWindowContains(t *testing.T) {
	w := window(5, 25)

	if !w.Contains(w.Start) || !w.Contains(w.End) {
		t.Error("Expected window to be closed at both edges")
	}
	if !w.Contains(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)) {
		t.Error("Expected interior instant to be contained")
	}
	if w.Contains(time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected instant past the end to be outside")
	}
}

func TestRangeStatsCovers(t *testing.T) {
	w := window(5, 25)

	tests := []struct {
		name  string
		stats RangeStats
		want  bool
	}{
		{
			name:  "empty table never covers",
			stats: RangeStats{},
			want:  false,
		},
		{
			name:  "exact bounds cover",
			stats: RangeStats{MinTs: "2024-06-05 00:00:00", MaxTs: "2024-06-25 23:59:59", Count: 10},
			want:  true,
		},
		{
			name:  "wider bounds cover",
			stats: RangeStats{MinTs: "2024-06-01 00:00:00", MaxTs: "2024-06-30 00:00:00", Count: 10},
			want:  true,
		},
		{
			name:  "short on the right does not cover",
			stats: RangeStats{MinTs: "2024-06-01 00:00:00", MaxTs: "2024-06-20 00:00:00", Count: 10},
			want:  false,
		},
		{
			name:  "short on the left does not cover",
			stats: RangeStats{MinTs: "2024-06-10 00:00:00", MaxTs: "2024-06-30 00:00:00", Count: 10},
			want:  false,
		},
	}

	for _, tt := range tests {
		if got := tt.stats.Covers(w); got != tt.want {
			t.Errorf("%s: Covers = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCanonicalRowTime(t *testing.T) {
	row := CanonicalRow{TsUTC: "2024-06-15 12:00:00"}
	if !row.Time().Equal(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected parsed time %v", row.Time())
	}

	bad := CanonicalRow{TsUTC: "garbage"}
	if !bad.Time().IsZero() {
		t.Error("Expected zero time for a corrupt key")
	}
}
