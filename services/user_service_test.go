package services

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	day := func(y int, m time.Month, d, hour, min int) time.Time {
		return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
	}

	t.Run("first activity starts at one", func(t *testing.T) {
		if got := nextStreak(nil, day(2025, 6, 2, 10, 0), 0); got != 1 {
			t.Errorf("nextStreak = %d, want 1", got)
		}
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		last := day(2025, 6, 2, 8, 0)
		if got := nextStreak(&last, day(2025, 6, 2, 20, 0), 3); got != 3 {
			t.Errorf("nextStreak = %d, want 3", got)
		}
	})

	t.Run("next day increments", func(t *testing.T) {
		last := day(2025, 6, 2, 23, 0)
		if got := nextStreak(&last, day(2025, 6, 3, 1, 0), 3); got != 4 {
			t.Errorf("nextStreak = %d, want 4", got)
		}
	})

	t.Run("gap resets", func(t *testing.T) {
		last := day(2025, 6, 2, 10, 0)
		if got := nextStreak(&last, day(2025, 6, 4, 10, 0), 7); got != 1 {
			t.Errorf("nextStreak = %d, want 1", got)
		}
	})

	t.Run("local midnight boundary in a non-UTC zone", func(t *testing.T) {
		// 23:30 and 00:30 the next local day are the same instant-range in
		// UTC-epoch terms but different calendar days. The comparison must
		// see consecutive days, matching how the engines bucket dates.
		loc := time.FixedZone("UTC+2", 2*60*60)
		last := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
		now := time.Date(2025, 6, 2, 0, 30, 0, 0, loc)
		if got := nextStreak(&last, now, 2); got != 3 {
			t.Errorf("nextStreak = %d, want 3", got)
		}
	})
}
