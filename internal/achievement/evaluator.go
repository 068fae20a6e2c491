package achievement

import (
	"questlogAPI/internal/activity"
	"questlogAPI/internal/stats"
)

// Evaluator checks the catalog against a user's stats and activity history.
type Evaluator struct {
	catalog []Definition
	byID    map[string]Definition
}

func NewEvaluator() *Evaluator {
	catalog := Catalog()
	byID := make(map[string]Definition, len(catalog))
	for _, def := range catalog {
		byID[def.ID] = def
	}
	return &Evaluator{catalog: catalog, byID: byID}
}

// Catalog returns the registry in evaluation order.
func (e *Evaluator) Catalog() []Definition {
	out := make([]Definition, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// Lookup returns the definition for an identifier.
func (e *Evaluator) Lookup(id string) (Definition, bool) {
	def, ok := e.byID[id]
	return def, ok
}

// Evaluate returns the definitions newly qualified by the given stats and
// history, in catalog (category) order. Achievements already in unlocked
// are never re-evaluated, so repeat calls with identical inputs return
// nothing new.
func (e *Evaluator) Evaluate(userStats stats.UserStats, unlocked []string, activities []*activity.Activity) []Definition {
	unlockedSet := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		unlockedSet[id] = true
	}

	aggregate := AggregateActivities(activities)

	var newlyUnlocked []Definition
	for _, def := range e.catalog {
		if unlockedSet[def.ID] {
			continue
		}
		if def.Unlock(userStats, aggregate) {
			newlyUnlocked = append(newlyUnlocked, def)
		}
	}
	return newlyUnlocked
}

// Progress returns the completion percentage (0..100) for a single
// achievement. Unknown identifiers and definitions without partial
// progress report 0.
func (e *Evaluator) Progress(id string, userStats stats.UserStats, activities []*activity.Activity) float64 {
	def, ok := e.byID[id]
	if !ok || def.Progress == nil {
		return 0
	}
	return def.Progress(userStats, AggregateActivities(activities))
}

// Statuses merges the catalog with the user's unlocked set for display,
// attaching partial progress to locked entries.
func (e *Evaluator) Statuses(userStats stats.UserStats, unlocked []string, activities []*activity.Activity) []WithStatus {
	unlockedSet := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		unlockedSet[id] = true
	}

	aggregate := AggregateActivities(activities)

	out := make([]WithStatus, 0, len(e.catalog))
	for _, def := range e.catalog {
		ws := WithStatus{Definition: def, Unlocked: unlockedSet[def.ID]}
		if ws.Unlocked {
			ws.Percent = 100
		} else if def.Progress != nil {
			ws.Percent = def.Progress(userStats, aggregate)
		}
		out = append(out, ws)
	}
	return out
}
