package challenge

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"questlogAPI/internal/activity"
)

var window = struct {
	start, end time.Time
}{
	start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	end:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
}

func testChallenge(typ Type) *Challenge {
	return &Challenge{
		ID:        uuid.New(),
		Type:      typ,
		StartDate: window.start,
		EndDate:   window.end,
	}
}

func activityAt(typ string, duration int, at time.Time) *activity.Activity {
	return &activity.Activity{
		ID:        uuid.New(),
		Type:      typ,
		Duration:  duration,
		XPEarned:  duration,
		CreatedAt: at,
	}
}

func TestScore_WorkoutsClampsAt100(t *testing.T) {
	c := testChallenge(TypeWorkouts)

	var activities []*activity.Activity
	for i := 0; i < 40; i++ {
		activities = append(activities, activityAt(activity.TypeWorkout, 30, window.start.Add(time.Duration(i)*time.Hour)))
	}

	r := Score(c, activities)
	if r.Score != 40 {
		t.Errorf("score = %v, want 40", r.Score)
	}
	if r.Progress != 100 {
		t.Errorf("progress = %v, want clamp at 100", r.Progress)
	}
}

func TestScore_WorkoutsIgnoresOtherTypes(t *testing.T) {
	c := testChallenge(TypeWorkouts)
	activities := []*activity.Activity{
		activityAt(activity.TypeWorkout, 30, window.start.Add(time.Hour)),
		activityAt(activity.TypeStudy, 30, window.start.Add(2*time.Hour)),
		activityAt(activity.TypeWork, 30, window.start.Add(3*time.Hour)),
	}

	r := Score(c, activities)
	if r.Score != 1 {
		t.Errorf("score = %v, want 1", r.Score)
	}
	if r.Progress != 5 {
		t.Errorf("progress = %v, want 5", r.Progress)
	}
}

func TestScore_WindowInclusive(t *testing.T) {
	c := testChallenge(TypeWorkouts)
	activities := []*activity.Activity{
		activityAt(activity.TypeWorkout, 30, window.start),                // on start boundary
		activityAt(activity.TypeWorkout, 30, window.end),                  // on end boundary
		activityAt(activity.TypeWorkout, 30, window.start.Add(-time.Second)), // outside
		activityAt(activity.TypeWorkout, 30, window.end.Add(time.Second)),    // outside
	}

	if r := Score(c, activities); r.Score != 2 {
		t.Errorf("score = %v, want 2 (boundaries inclusive, outside excluded)", r.Score)
	}
}

func TestScore_StudyHoursSumsMinutes(t *testing.T) {
	c := testChallenge(TypeStudyHours)
	activities := []*activity.Activity{
		activityAt(activity.TypeStudy, 25, window.start.Add(time.Hour)),
		activityAt(activity.TypeStudy, 10, window.start.Add(2*time.Hour)),
		activityAt(activity.TypeWork, 60, window.start.Add(3*time.Hour)),
	}

	r := Score(c, activities)
	if r.Score != 35 {
		t.Errorf("score = %v, want 35", r.Score)
	}
	if r.Progress != 70 {
		t.Errorf("progress = %v, want 70", r.Progress)
	}
}

func TestScore_XPEarnedAllTypes(t *testing.T) {
	c := testChallenge(TypeXPEarned)
	activities := []*activity.Activity{
		activityAt(activity.TypeWorkout, 100, window.start.Add(time.Hour)),
		activityAt("GUITAR", 150, window.start.Add(2*time.Hour)),
	}

	r := Score(c, activities)
	if r.Score != 250 {
		t.Errorf("score = %v, want 250", r.Score)
	}
	if r.Progress != 25 {
		t.Errorf("progress = %v, want 25", r.Progress)
	}
}

func TestScore_StreakGapResets(t *testing.T) {
	c := testChallenge(TypeStreak)

	// Activity on days 1,2,3 then 5,6,7,8: the max run is 4, not 7.
	var activities []*activity.Activity
	for _, offset := range []int{0, 1, 2, 4, 5, 6, 7} {
		activities = append(activities, activityAt(activity.TypeStudy, 30, window.start.AddDate(0, 0, offset).Add(12*time.Hour)))
	}

	r := Score(c, activities)
	if r.Score != 4 {
		t.Errorf("streak score = %v, want 4", r.Score)
	}
	if r.Progress != 40 {
		t.Errorf("progress = %v, want 40", r.Progress)
	}
}

func TestScore_VarietyDistinctTypes(t *testing.T) {
	c := testChallenge(TypeVariety)
	activities := []*activity.Activity{
		activityAt(activity.TypeWorkout, 30, window.start.Add(time.Hour)),
		activityAt(activity.TypeWorkout, 30, window.start.Add(2*time.Hour)),
		activityAt(activity.TypeStudy, 30, window.start.Add(3*time.Hour)),
	}

	r := Score(c, activities)
	if r.Score != 2 {
		t.Errorf("variety score = %v, want 2 distinct types", r.Score)
	}
}

func TestScore_EmptyWindow(t *testing.T) {
	for _, typ := range []Type{TypeWorkouts, TypeStudyHours, TypeWorkHours, TypeXPEarned, TypeStreak, TypeVariety} {
		r := Score(testChallenge(typ), nil)
		if r.Score != 0 || r.Progress != 0 {
			t.Errorf("type %s: empty history scored %v/%v, want 0/0", typ, r.Score, r.Progress)
		}
	}
}
