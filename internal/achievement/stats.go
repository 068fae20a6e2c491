package achievement

import (
	"sort"
	"time"

	"questlogAPI/internal/activity"
)

const dayKeyLayout = "2006-01-02"

// ActivityStats is a one-pass aggregation of a user's activity history.
// It is computed once per evaluation and shared by every predicate.
type ActivityStats struct {
	TotalActivities int

	WorkoutCount int
	StudyCount   int
	WorkCount    int

	TotalWorkoutTime int // minutes
	TotalStudyTime   int
	TotalWorkTime    int

	Categories map[string]bool

	DailyCounts map[string]int // day key -> activity count
	MaxDailyCount int

	WeekendDays map[string]bool // distinct calendar dates falling on Sat/Sun

	EarlyCount     int // started before 08:00
	LateCount      int // started at or after 22:00
	VeryEarlyCount int // started before 07:00
	VeryLateCount  int // started at or after 23:00

	MaxDailyCategories int // most distinct categories touched in a single day

	LongestRun  int  // longest run of consecutive calendar days with activity
	HasMarathon bool // any single activity of 120+ minutes

	MomentumRun bool // 7 consecutive recorded days with strictly increasing counts
}

// AggregateActivities computes ActivityStats in a single pass over the
// history, plus two ordered passes over the distinct activity dates for
// the run-based flags.
func AggregateActivities(activities []*activity.Activity) *ActivityStats {
	s := &ActivityStats{
		Categories:  make(map[string]bool),
		DailyCounts: make(map[string]int),
		WeekendDays: make(map[string]bool),
	}

	dailyCategories := make(map[string]map[string]bool)

	for _, a := range activities {
		s.TotalActivities++

		switch a.Type {
		case activity.TypeWorkout:
			s.WorkoutCount++
			s.TotalWorkoutTime += a.Duration
		case activity.TypeStudy:
			s.StudyCount++
			s.TotalStudyTime += a.Duration
		case activity.TypeWork:
			s.WorkCount++
			s.TotalWorkTime += a.Duration
		}

		s.Categories[a.Type] = true

		dayKey := a.CreatedAt.Format(dayKeyLayout)
		s.DailyCounts[dayKey]++
		if s.DailyCounts[dayKey] > s.MaxDailyCount {
			s.MaxDailyCount = s.DailyCounts[dayKey]
		}

		if dailyCategories[dayKey] == nil {
			dailyCategories[dayKey] = make(map[string]bool)
		}
		dailyCategories[dayKey][a.Type] = true

		if wd := a.CreatedAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
			s.WeekendDays[dayKey] = true
		}

		hour := a.CreatedAt.Hour()
		if hour < 8 {
			s.EarlyCount++
		} else if hour >= 22 {
			s.LateCount++
		}
		if hour < 7 {
			s.VeryEarlyCount++
		} else if hour >= 23 {
			s.VeryLateCount++
		}

		if a.Duration >= 120 {
			s.HasMarathon = true
		}
	}

	for _, cats := range dailyCategories {
		if len(cats) > s.MaxDailyCategories {
			s.MaxDailyCategories = len(cats)
		}
	}

	days := sortedDays(s.DailyCounts)
	s.LongestRun = longestConsecutiveRun(days)
	s.MomentumRun = hasMomentumRun(days, s.DailyCounts)

	return s
}

// TotalTime is the combined minutes across the three fixed categories.
func (s *ActivityStats) TotalTime() int {
	return s.TotalWorkoutTime + s.TotalStudyTime + s.TotalWorkTime
}

func sortedDays(counts map[string]int) []string {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// longestConsecutiveRun finds the maximum run of calendar days where each
// day is exactly one day after the previous. Any other gap resets the run.
func longestConsecutiveRun(days []string) int {
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	prev, _ := time.Parse(dayKeyLayout, days[0])
	for _, d := range days[1:] {
		curr, err := time.Parse(dayKeyLayout, d)
		if err != nil {
			continue
		}
		if curr.Sub(prev) == 24*time.Hour {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
		prev = curr
	}
	return longest
}

// hasMomentumRun reports whether the daily activity count strictly
// increased across 7 consecutive recorded days.
func hasMomentumRun(days []string, counts map[string]int) bool {
	if len(days) < 7 {
		return false
	}
	increasing := 0
	for i := 1; i < len(days); i++ {
		if counts[days[i]] > counts[days[i-1]] {
			increasing++
			if increasing >= 6 {
				return true
			}
		} else {
			increasing = 0
		}
	}
	return false
}
