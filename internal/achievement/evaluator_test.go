package achievement

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"questlogAPI/internal/activity"
	"questlogAPI/internal/stats"
)

func act(t *testing.T, typ string, duration int, createdAt time.Time) *activity.Activity {
	t.Helper()
	return &activity.Activity{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Type:      typ,
		Title:     typ,
		Duration:  duration,
		XPEarned:  duration,
		CreatedAt: createdAt,
	}
}

func ids(defs []Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.ID)
	}
	return out
}

func contains(defs []Definition, id string) bool {
	for _, d := range defs {
		if d.ID == id {
			return true
		}
	}
	return false
}

func TestCatalog_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Catalog() {
		if seen[def.ID] {
			t.Errorf("duplicate achievement id: %s", def.ID)
		}
		seen[def.ID] = true
	}
}

func TestCatalog_StableIDs(t *testing.T) {
	e := NewEvaluator()
	for _, id := range []string{
		"firstWorkout", "workoutMaster", "studyStreak", "workaholic",
		"earlyBird", "nightOwl", "weekendWarrior", "speedDemon",
		"varietyMaster", "firstDay", "marathon", "knowledgeSeeker",
		"productivityGuru", "fitnessEnthusiast", "timeMaster",
	} {
		if _, ok := e.Lookup(id); !ok {
			t.Errorf("catalog is missing id %q", id)
		}
	}
}

func TestCatalog_AllCategoriesCovered(t *testing.T) {
	covered := map[Category]bool{}
	for _, def := range Catalog() {
		covered[def.Category] = true
	}
	for _, cat := range []Category{CategoryMilestones, CategoryStreaks, CategoryActivities, CategoryTimeBased, CategorySpecial} {
		if !covered[cat] {
			t.Errorf("category %q has no achievements", cat)
		}
	}
}

func TestCatalog_CategoryOrder(t *testing.T) {
	order := map[Category]int{
		CategoryMilestones: 0,
		CategoryStreaks:    1,
		CategoryActivities: 2,
		CategoryTimeBased:  3,
		CategorySpecial:    4,
	}
	last := -1
	for _, def := range Catalog() {
		rank := order[def.Category]
		if rank < last {
			t.Fatalf("catalog out of category order at %s", def.ID)
		}
		last = rank
	}
}

func TestEvaluate_MilestoneDeterminism(t *testing.T) {
	e := NewEvaluator()
	unlocked := e.Evaluate(stats.UserStats{Level: 10}, nil, nil)

	if !contains(unlocked, "level5") || !contains(unlocked, "level10") {
		t.Errorf("level 10 user should unlock level5 and level10, got %v", ids(unlocked))
	}
	if contains(unlocked, "level25") {
		t.Errorf("level 10 user must not unlock level25, got %v", ids(unlocked))
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := NewEvaluator()
	userStats := stats.UserStats{Level: 7, StreakCount: 3}
	activities := []*activity.Activity{
		act(t, activity.TypeWorkout, 45, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)),
	}

	first := e.Evaluate(userStats, nil, activities)
	if len(first) == 0 {
		t.Fatal("expected unlocks on first evaluation")
	}

	second := e.Evaluate(userStats, ids(first), activities)
	if len(second) != 0 {
		t.Errorf("second evaluation with same inputs unlocked %v, want none", ids(second))
	}
}

func TestEvaluate_ZeroHistoryLevelOne(t *testing.T) {
	e := NewEvaluator()
	unlocked := e.Evaluate(stats.UserStats{Level: 1}, nil, nil)
	if len(unlocked) != 0 {
		t.Errorf("fresh user unlocked %v, want none", ids(unlocked))
	}
}

func TestEvaluate_TimeBased(t *testing.T) {
	e := NewEvaluator()
	activities := []*activity.Activity{
		act(t, activity.TypeStudy, 30, time.Date(2025, 6, 2, 6, 30, 0, 0, time.UTC)),  // before 7 AM
		act(t, activity.TypeStudy, 30, time.Date(2025, 6, 3, 23, 15, 0, 0, time.UTC)), // after 11 PM
	}

	unlocked := e.Evaluate(stats.UserStats{Level: 1}, nil, activities)
	if !contains(unlocked, "earlyBird") {
		t.Error("6:30 AM activity should unlock earlyBird")
	}
	if !contains(unlocked, "nightOwl") {
		t.Error("11:15 PM activity should unlock nightOwl")
	}
	if contains(unlocked, "earlyRiser") {
		t.Error("one early activity must not unlock earlyRiser (needs 5)")
	}
}

func TestEvaluate_WeekendCountsDistinctDates(t *testing.T) {
	e := NewEvaluator()

	// Ten activities on the same Saturday is one weekend day, not ten.
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)
	var activities []*activity.Activity
	for i := 0; i < 10; i++ {
		activities = append(activities, act(t, activity.TypeWorkout, 10, saturday.Add(time.Duration(i)*time.Minute)))
	}

	unlocked := e.Evaluate(stats.UserStats{Level: 1}, nil, activities)
	if contains(unlocked, "weekendWarrior") {
		t.Error("ten activities on one weekend day must not count as ten weekend days")
	}
}

func TestEvaluate_ConsecutiveRunGap(t *testing.T) {
	// Days 1,2,3,5,6,7,8: the gap at day 4 limits the max run to 4.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var activities []*activity.Activity
	for _, offset := range []int{0, 1, 2, 4, 5, 6, 7} {
		activities = append(activities, act(t, activity.TypeStudy, 30, base.AddDate(0, 0, offset)))
	}

	agg := AggregateActivities(activities)
	if agg.LongestRun != 4 {
		t.Errorf("LongestRun = %d, want 4", agg.LongestRun)
	}
}

func TestEvaluate_ConsistencyKing(t *testing.T) {
	e := NewEvaluator()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var activities []*activity.Activity
	for day := 0; day < 14; day++ {
		activities = append(activities, act(t, activity.TypeWork, 30, base.AddDate(0, 0, day)))
	}

	unlocked := e.Evaluate(stats.UserStats{Level: 1}, nil, activities)
	if !contains(unlocked, "consistencyKing") {
		t.Errorf("14 consecutive days should unlock consistencyKing, got %v", ids(unlocked))
	}
}

func TestEvaluate_MomentumBuilder(t *testing.T) {
	e := NewEvaluator()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 1,2,3,4,5,6,7 activities on seven consecutive days.
	var activities []*activity.Activity
	for day := 0; day < 7; day++ {
		for i := 0; i <= day; i++ {
			activities = append(activities, act(t, activity.TypeStudy, 15, base.AddDate(0, 0, day).Add(time.Duration(i)*time.Minute)))
		}
	}

	unlocked := e.Evaluate(stats.UserStats{Level: 1}, nil, activities)
	if !contains(unlocked, "momentumBuilder") {
		t.Errorf("strictly increasing week should unlock momentumBuilder, got %v", ids(unlocked))
	}
}

func TestBalanceSeeker_ZeroTotalGuarded(t *testing.T) {
	if isBalanced(&ActivityStats{}) {
		t.Error("zero total category time must not satisfy the balance predicate")
	}
}

func TestBalanceSeeker_EqualSplit(t *testing.T) {
	agg := &ActivityStats{TotalWorkoutTime: 100, TotalStudyTime: 100, TotalWorkTime: 100}
	if !isBalanced(agg) {
		t.Error("equal category times should satisfy the balance predicate")
	}

	skewed := &ActivityStats{TotalWorkoutTime: 300, TotalStudyTime: 10, TotalWorkTime: 10}
	if isBalanced(skewed) {
		t.Error("heavily skewed times must not satisfy the balance predicate")
	}
}

func TestProgress_ClampedAt100(t *testing.T) {
	e := NewEvaluator()
	got := e.Progress("workoutMaster", stats.UserStats{}, manyWorkouts(t, 200))
	if got != 100 {
		t.Errorf("progress = %v, want clamp at 100", got)
	}
}

func TestProgress_PartialRatio(t *testing.T) {
	e := NewEvaluator()
	got := e.Progress("workoutMaster", stats.UserStats{}, manyWorkouts(t, 25))
	if got != 50 {
		t.Errorf("progress = %v, want 50", got)
	}
}

func TestProgress_UnknownID(t *testing.T) {
	e := NewEvaluator()
	if got := e.Progress("nope", stats.UserStats{}, nil); got != 0 {
		t.Errorf("progress for unknown id = %v, want 0", got)
	}
}

func TestStatuses_UnlockedReports100(t *testing.T) {
	e := NewEvaluator()
	statuses := e.Statuses(stats.UserStats{Level: 1}, []string{"firstDay"}, nil)
	for _, ws := range statuses {
		if ws.ID == "firstDay" {
			if !ws.Unlocked || ws.Percent != 100 {
				t.Errorf("firstDay status = unlocked %v percent %v, want unlocked 100", ws.Unlocked, ws.Percent)
			}
			return
		}
	}
	t.Fatal("firstDay missing from statuses")
}

func manyWorkouts(t *testing.T, n int) []*activity.Activity {
	t.Helper()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	out := make([]*activity.Activity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, act(t, activity.TypeWorkout, 30, base.Add(time.Duration(i)*time.Hour)))
	}
	return out
}
