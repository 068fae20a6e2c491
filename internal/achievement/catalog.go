package achievement

import (
	"math"

	"questlogAPI/internal/stats"
)

// Catalog returns the full achievement registry in evaluation order:
// milestones, streaks, activities, time-based, special. The catalog is a
// mapping from identifier to a single definition; where the product specs
// described the same identifier twice with different thresholds
// (speedDemon, varietyMaster, weekendWarrior), the later definition wins.
func Catalog() []Definition {
	defs := make([]Definition, 0, 30)
	defs = append(defs, milestoneDefs()...)
	defs = append(defs, streakDefs()...)
	defs = append(defs, activityDefs()...)
	defs = append(defs, timeBasedDefs()...)
	defs = append(defs, specialDefs()...)
	return defs
}

func milestoneDefs() []Definition {
	levels := []struct {
		id        string
		title     string
		desc      string
		icon      string
		threshold int
		reward    int
	}{
		{"level5", "Getting Started", "Reach Level 5", "⭐", 5, 50},
		{"level10", "Dedicated Learner", "Reach Level 10", "🌟", 10, 100},
		{"level25", "Experience Master", "Reach Level 25", "💎", 25, 250},
		{"level50", "Halfway Hero", "Reach Level 50", "👑", 50, 500},
		{"level100", "Century Club", "Reach Level 100", "🏆", 100, 1000},
	}

	defs := make([]Definition, 0, len(levels))
	for _, l := range levels {
		threshold := l.threshold
		defs = append(defs, Definition{
			ID:          l.id,
			Title:       l.title,
			Description: l.desc,
			Icon:        l.icon,
			Category:    CategoryMilestones,
			XPReward:    l.reward,
			Unlock: func(u stats.UserStats, _ *ActivityStats) bool {
				return u.Level >= threshold
			},
			Progress: func(u stats.UserStats, _ *ActivityStats) float64 {
				return ratio(float64(u.Level), float64(threshold))
			},
		})
	}
	return defs
}

func streakDefs() []Definition {
	streaks := []struct {
		id        string
		title     string
		desc      string
		icon      string
		threshold int
		reward    int
	}{
		{"streak3", "Getting in the Groove", "Maintain a 3-day streak", "🔥", 3, 30},
		{"streak7", "Week Warrior", "Maintain a 7-day streak", "🔥🔥", 7, 75},
		{"streak30", "Monthly Master", "Maintain a 30-day streak", "🔥🔥🔥", 30, 300},
		{"streak100", "Century Streak", "Maintain a 100-day streak", "🔥🔥🔥🔥", 100, 1000},
	}

	defs := make([]Definition, 0, len(streaks))
	for _, s := range streaks {
		threshold := s.threshold
		defs = append(defs, Definition{
			ID:          s.id,
			Title:       s.title,
			Description: s.desc,
			Icon:        s.icon,
			Category:    CategoryStreaks,
			XPReward:    s.reward,
			Unlock: func(u stats.UserStats, _ *ActivityStats) bool {
				return u.StreakCount >= threshold
			},
			Progress: func(u stats.UserStats, _ *ActivityStats) float64 {
				return ratio(float64(u.StreakCount), float64(threshold))
			},
		})
	}
	return defs
}

func activityDefs() []Definition {
	return []Definition{
		{
			ID: "firstWorkout", Title: "First Steps", Description: "Complete your first workout",
			Icon: "💪", Category: CategoryActivities, XPReward: 25,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.WorkoutCount >= 1 },
		},
		{
			ID: "workoutMaster", Title: "Fitness Fanatic", Description: "Complete 50 workouts",
			Icon: "🏋️", Category: CategoryActivities, XPReward: 200,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.WorkoutCount >= 50 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.WorkoutCount), 50) },
		},
		{
			ID: "studyStreak", Title: "Knowledge Seeker", Description: "Study for 5 days in a row",
			Icon: "📚", Category: CategoryActivities, XPReward: 100,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.StudyCount >= 5 },
		},
		{
			ID: "workaholic", Title: "Productivity Pro", Description: "Log 100 hours of work",
			Icon: "💼", Category: CategoryActivities, XPReward: 300,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.TotalWorkTime >= 6000 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.TotalWorkTime), 6000) },
		},
	}
}

func timeBasedDefs() []Definition {
	return []Definition{
		{
			ID: "earlyBird", Title: "Early Bird", Description: "Complete an activity before 8 AM",
			Icon: "🌅", Category: CategoryTimeBased, XPReward: 50,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.EarlyCount >= 1 },
		},
		{
			ID: "nightOwl", Title: "Night Owl", Description: "Complete an activity after 10 PM",
			Icon: "🦉", Category: CategoryTimeBased, XPReward: 50,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.LateCount >= 1 },
		},
		{
			ID: "earlyRiser", Title: "Early Riser", Description: "Complete 5 activities before 7 AM",
			Icon: "🌄", Category: CategoryTimeBased, XPReward: 150,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.VeryEarlyCount >= 5 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.VeryEarlyCount), 5) },
		},
		{
			ID: "nightShift", Title: "Night Shift Worker", Description: "Complete 10 activities after 11 PM",
			Icon: "🌙", Category: CategoryTimeBased, XPReward: 200,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.VeryLateCount >= 10 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.VeryLateCount), 10) },
		},
		{
			ID: "weekendWarrior", Title: "Weekend Warrior", Description: "Complete activities on 10 different weekend days",
			Icon: "🎉", Category: CategoryTimeBased, XPReward: 300,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return len(a.WeekendDays) >= 10 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(len(a.WeekendDays)), 10) },
		},
		{
			ID: "weekendConsistency", Title: "Weekend Consistency", Description: "Complete activities on 20 different weekend days",
			Icon: "🗓️", Category: CategoryTimeBased, XPReward: 400,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return len(a.WeekendDays) >= 20 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(len(a.WeekendDays)), 20) },
		},
	}
}

func specialDefs() []Definition {
	return []Definition{
		{
			ID: "firstDay", Title: "Day One", Description: "Complete your first day of activities",
			Icon: "🎯", Category: CategorySpecial, XPReward: 25,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.TotalActivities >= 1 },
		},
		{
			ID: "varietyMaster", Title: "Jack of All Trades", Description: "Complete activities in all 3 categories",
			Icon: "🎭", Category: CategorySpecial, XPReward: 300,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return len(a.Categories) >= 3 },
		},
		{
			ID: "dailyVariety", Title: "Full Spectrum Day", Description: "Complete activities in all 3 categories in one day",
			Icon: "🌈", Category: CategorySpecial, XPReward: 350,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.MaxDailyCategories >= 3 },
		},
		{
			ID: "speedDemon", Title: "Speed Demon", Description: "Complete 5 activities in a single day",
			Icon: "⚡", Category: CategorySpecial, XPReward: 250,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.MaxDailyCount >= 5 },
		},
		{
			ID: "marathon", Title: "Marathon Runner", Description: "Complete a 2+ hour activity",
			Icon: "🏃", Category: CategorySpecial, XPReward: 200,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.HasMarathon },
		},
		{
			ID: "consistencyKing", Title: "Consistency King", Description: "Complete at least one activity every day for 2 weeks",
			Icon: "👑", Category: CategorySpecial, XPReward: 400,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.LongestRun >= 14 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.LongestRun), 14) },
		},
		{
			ID: "momentumBuilder", Title: "Momentum Builder", Description: "Increase your daily activity count for 7 consecutive days",
			Icon: "📈", Category: CategorySpecial, XPReward: 300,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return a.MomentumRun },
		},
		{
			ID: "balanceSeeker", Title: "Balance Seeker", Description: "Have equal time spent in all 3 categories (within 10%)",
			Icon: "⚖️", Category: CategorySpecial, XPReward: 350,
			Unlock: func(_ stats.UserStats, a *ActivityStats) bool { return isBalanced(a) },
		},
		{
			ID: "productivityGuru", Title: "Productivity Guru", Description: "Log 200 hours of work activities",
			Icon: "🗂️", Category: CategorySpecial, XPReward: 500,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.TotalWorkTime >= 12000 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.TotalWorkTime), 12000) },
		},
		{
			ID: "fitnessEnthusiast", Title: "Fitness Enthusiast", Description: "Complete 100 workout activities",
			Icon: "🏆", Category: CategorySpecial, XPReward: 400,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.WorkoutCount >= 100 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.WorkoutCount), 100) },
		},
		{
			ID: "knowledgeSeeker", Title: "Knowledge Seeker", Description: "Study for 500 hours total",
			Icon: "📚", Category: CategorySpecial, XPReward: 600,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.TotalStudyTime >= 30000 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.TotalStudyTime), 30000) },
		},
		{
			ID: "timeMaster", Title: "Time Master", Description: "Log 1000 total hours across all activities",
			Icon: "⏰", Category: CategorySpecial, XPReward: 800,
			Unlock:   func(_ stats.UserStats, a *ActivityStats) bool { return a.TotalTime() >= 60000 },
			Progress: func(_ stats.UserStats, a *ActivityStats) float64 { return ratio(float64(a.TotalTime()), 60000) },
		},
	}
}

// isBalanced checks that the three fixed category shares are each within
// 10 percentage points of their average share. Zero combined time never
// qualifies.
func isBalanced(a *ActivityStats) bool {
	total := float64(a.TotalTime())
	if total == 0 {
		return false
	}

	workoutPct := float64(a.TotalWorkoutTime) / total * 100
	studyPct := float64(a.TotalStudyTime) / total * 100
	workPct := float64(a.TotalWorkTime) / total * 100

	avg := (workoutPct + studyPct + workPct) / 3
	const tolerance = 10

	return math.Abs(workoutPct-avg) <= tolerance &&
		math.Abs(studyPct-avg) <= tolerance &&
		math.Abs(workPct-avg) <= tolerance
}

func ratio(have, want float64) float64 {
	if want <= 0 {
		return 0
	}
	return math.Min(100, have/want*100)
}
