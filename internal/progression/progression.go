package progression

import "math"

// XPStrategy converts an activity into an XP amount. The linear strategy is
// the default; the multiplier strategy exists for intensity-weighted scoring.
type XPStrategy interface {
	ActivityXP(activityType string, intensity string, durationMinutes int) int
}

// LinearStrategy awards 1 XP per minute regardless of type or intensity.
type LinearStrategy struct{}

func (LinearStrategy) ActivityXP(_ string, _ string, durationMinutes int) int {
	if durationMinutes < 0 {
		return 0
	}
	return durationMinutes
}

// MultiplierStrategy weights XP by intensity and activity type, with a 10%
// bonus for activities of 30 minutes or longer.
type MultiplierStrategy struct{}

var intensityMultipliers = map[string]float64{
	"LOW":    0.8,
	"MEDIUM": 1,
	"HIGH":   1.5,
}

var typeMultipliers = map[string]float64{
	"WORKOUT": 1.2,
	"STUDY":   1.1,
	"WORK":    1,
}

func (MultiplierStrategy) ActivityXP(activityType string, intensity string, durationMinutes int) int {
	if durationMinutes < 0 {
		return 0
	}
	im, ok := intensityMultipliers[intensity]
	if !ok {
		im = 1
	}
	tm, ok := typeMultipliers[activityType]
	if !ok {
		tm = 1
	}
	xp := math.Round(float64(durationMinutes) * im * tm)
	if durationMinutes >= 30 {
		xp = math.Round(xp * 1.1)
	}
	return int(xp)
}

// XPToNextLevel is the XP required to advance from the given level.
func XPToNextLevel(level int) int {
	return level * 100
}

// LevelState is the mutable progression slice of a user record.
type LevelState struct {
	Level   int
	XP      int
	TotalXP int
}

// ApplyXP adds amount to the state, carrying overflow across as many
// level-ups as needed. Thresholds scale with level (level*100), so this
// is a loop rather than a modulo. Negative amounts are the caller's bug
// and are ignored. Returns the new level if at least one level-up
// occurred, or 0 otherwise.
func ApplyXP(state *LevelState, amount int) int {
	if amount <= 0 {
		return 0
	}
	if state.Level < 1 {
		state.Level = 1
	}

	state.XP += amount
	state.TotalXP += amount

	leveledUp := false
	for state.XP >= XPToNextLevel(state.Level) {
		state.XP -= XPToNextLevel(state.Level)
		state.Level++
		leveledUp = true
	}

	if leveledUp {
		return state.Level
	}
	return 0
}
