package services

import "testing"

func TestDefaultXPStrategyIsLinear(t *testing.T) {
	s := NewActivityService(nil, nil, nil, nil)

	cases := []struct {
		typ       string
		intensity string
		duration  int
	}{
		{"WORKOUT", "HIGH", 30},
		{"STUDY", "LOW", 45},
		{"WORK", "MEDIUM", 90},
	}
	for _, tc := range cases {
		if got := s.xp.ActivityXP(tc.typ, tc.intensity, tc.duration); got != tc.duration {
			t.Errorf("ActivityXP(%s, %s, %d) = %d, want %d (1 XP per minute)",
				tc.typ, tc.intensity, tc.duration, got, tc.duration)
		}
	}
}
