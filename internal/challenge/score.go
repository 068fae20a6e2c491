package challenge

import (
	"sort"
	"time"

	"questlogAPI/internal/activity"
)

// Normalization caps mapping each metric to a 0-100 progress scale.
// Scores past the cap clamp at 100.
const (
	workoutsTarget = 20
	studyTarget    = 50
	workTarget     = 80
	xpTarget       = 1000
	streakTarget   = 10
	varietyTarget  = 3
)

// Result is a participant's score and normalized progress for one challenge.
type Result struct {
	Score    float64 `json:"score"`
	Progress float64 `json:"progress"`
}

// Score computes a participant's result for the challenge from the
// activities that fall inside [StartDate, EndDate] inclusive. Both the
// activity-submit recompute and the on-demand detail fetch go through this
// one function; they must never diverge.
func Score(c *Challenge, activities []*activity.Activity) Result {
	inWindow := filterWindow(activities, c.StartDate, c.EndDate)

	switch c.Type {
	case TypeWorkouts:
		count := countOfType(inWindow, activity.TypeWorkout)
		return normalized(float64(count), workoutsTarget)
	case TypeStudyHours:
		minutes := durationOfType(inWindow, activity.TypeStudy)
		return normalized(float64(minutes), studyTarget)
	case TypeWorkHours:
		minutes := durationOfType(inWindow, activity.TypeWork)
		return normalized(float64(minutes), workTarget)
	case TypeXPEarned:
		xp := 0
		for _, a := range inWindow {
			xp += a.XPEarned
		}
		return normalized(float64(xp), xpTarget)
	case TypeStreak:
		return normalized(float64(longestStreak(inWindow)), streakTarget)
	case TypeVariety:
		kinds := make(map[string]bool)
		for _, a := range inWindow {
			kinds[a.Type] = true
		}
		return normalized(float64(len(kinds)), varietyTarget)
	default:
		return Result{}
	}
}

func filterWindow(activities []*activity.Activity, start, end time.Time) []*activity.Activity {
	var out []*activity.Activity
	for _, a := range activities {
		if a.CreatedAt.Before(start) || a.CreatedAt.After(end) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func countOfType(activities []*activity.Activity, typ string) int {
	n := 0
	for _, a := range activities {
		if a.Type == typ {
			n++
		}
	}
	return n
}

func durationOfType(activities []*activity.Activity, typ string) int {
	total := 0
	for _, a := range activities {
		if a.Type == typ {
			total += a.Duration
		}
	}
	return total
}

// longestStreak finds the longest run of consecutive calendar days with at
// least one activity. A day difference of exactly 1 extends the run; any
// other gap resets it.
func longestStreak(activities []*activity.Activity) int {
	if len(activities) == 0 {
		return 0
	}

	days := make(map[string]bool)
	for _, a := range activities {
		days[a.CreatedAt.Format("2006-01-02")] = true
	}

	keys := make([]string, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Strings(keys)

	longest, current := 1, 1
	prev, _ := time.Parse("2006-01-02", keys[0])
	for _, k := range keys[1:] {
		curr, err := time.Parse("2006-01-02", k)
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

func normalized(score, target float64) Result {
	progress := score / target * 100
	if progress > 100 {
		progress = 100
	}
	return Result{Score: score, Progress: progress}
}
