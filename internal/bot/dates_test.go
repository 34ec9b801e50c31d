package bot

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		args      []string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "today",
			args:      []string{"today"},
			wantStart: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yesterday",
			args:      []string{"yesterday"},
			wantStart: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "month names",
			args:      []string{"June", "15", "July", "1"},
			wantStart: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "short month names",
			args:      []string{"jun", "15", "jul", "1"},
			wantStart: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "year rollover",
			args:      []string{"December", "20", "January", "5"},
			wantStart: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseDateRange(tt.args, now)
			if err != nil {
				t.Fatalf("parseDateRange(%v): %v", tt.args, err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestParseDateRangeRejectsGarbage(t *testing.T) {
	now := time.Now().UTC()
	for _, args := range [][]string{
		{"tomorrow"},
		{"June", "15"},
		{"Juneteenth", "15", "July", "1"},
		{"June", "forty", "July", "1"},
		{"June", "0", "July", "1"},
	} {
		_, _, err := parseDateRange(args, now)
		var ue *usageError
		if !errors.As(err, &ue) {
			t.Errorf("parseDateRange(%v) error = %v, want usage error", args, err)
		}
	}
}
