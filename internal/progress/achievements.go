package progress

import (
	"math"
	"time"

	"github.com/verte-zerg/typrr/internal/model"
)

// Category groups achievements by what they measure.
type Category string

const (
	CategorySpeed       Category = "speed"
	CategoryAccuracy    Category = "accuracy"
	CategoryConsistency Category = "consistency"
	CategoryDiversity   Category = "diversity"
	CategoryVolume      Category = "volume"
)

// Definition describes one achievement.
type Definition struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Requirement float64
}

// Definitions is the full achievement list.
var Definitions = []Definition{
	{ID: "speed_50", Title: "Speedster", Description: "Reach 50 WPM", Category: CategorySpeed, Requirement: 50},
	{ID: "speed_75", Title: "Fast Typer", Description: "Reach 75 WPM", Category: CategorySpeed, Requirement: 75},
	{ID: "speed_100", Title: "Speed Demon", Description: "Reach 100 WPM", Category: CategorySpeed, Requirement: 100},
	{ID: "speed_150", Title: "Lightning Fast", Description: "Reach 150 WPM", Category: CategorySpeed, Requirement: 150},

	{ID: "accuracy_95", Title: "Precise", Description: "95% accuracy on any snippet", Category: CategoryAccuracy, Requirement: 95},
	{ID: "accuracy_99", Title: "Nearly Perfect", Description: "99% accuracy on any snippet", Category: CategoryAccuracy, Requirement: 99},
	{ID: "accuracy_100", Title: "Perfectionist", Description: "100% accuracy on any snippet", Category: CategoryAccuracy, Requirement: 100},

	{ID: "streak_3", Title: "Getting Started", Description: "3 day streak", Category: CategoryConsistency, Requirement: 3},
	{ID: "streak_7", Title: "Week Warrior", Description: "7 day streak", Category: CategoryConsistency, Requirement: 7},
	{ID: "streak_14", Title: "Two Weeks Strong", Description: "14 day streak", Category: CategoryConsistency, Requirement: 14},
	{ID: "streak_30", Title: "Monthly Master", Description: "30 day streak", Category: CategoryConsistency, Requirement: 30},
	{ID: "streak_100", Title: "Century Streak", Description: "100 day streak", Category: CategoryConsistency, Requirement: 100},

	{ID: "lang_3", Title: "Trilingual", Description: "Practice 3 different languages", Category: CategoryDiversity, Requirement: 3},
	{ID: "lang_5", Title: "Polyglot", Description: "Practice 5 different languages", Category: CategoryDiversity, Requirement: 5},
	{ID: "lang_10", Title: "Language Master", Description: "Practice 10 different languages", Category: CategoryDiversity, Requirement: 10},

	{ID: "attempts_10", Title: "Beginner", Description: "Complete 10 snippets", Category: CategoryVolume, Requirement: 10},
	{ID: "attempts_50", Title: "Dedicated", Description: "Complete 50 snippets", Category: CategoryVolume, Requirement: 50},
	{ID: "attempts_100", Title: "Century Club", Description: "Complete 100 snippets", Category: CategoryVolume, Requirement: 100},
	{ID: "attempts_500", Title: "Elite Typer", Description: "Complete 500 snippets", Category: CategoryVolume, Requirement: 500},
	{ID: "attempts_1000", Title: "Legend", Description: "Complete 1000 snippets", Category: CategoryVolume, Requirement: 1000},

	{ID: "hard_50", Title: "Hard Mode Master", Description: "Complete 50 hard difficulty snippets", Category: CategoryVolume, Requirement: 50},
	{ID: "first_practice", Title: "First Steps", Description: "Complete your first snippet", Category: CategoryVolume, Requirement: 1},
}

// Unlocked is the persisted record of an earned achievement.
type Unlocked struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Achievement is a definition evaluated against the player's history.
type Achievement struct {
	Definition
	Unlocked   bool
	Progress   float64
	UnlockedAt time.Time
}

// Evaluate scores every definition against history and streak.
// It returns the evaluated list, the updated unlock set, and the achievements unlocked for the first time.
func Evaluate(history []model.Attempt, streak Streak, saved []Unlocked, now time.Time) ([]Achievement, []Unlocked, []Achievement) {
	var bestWPM, bestAccuracy float64
	hard := 0
	langs := map[string]struct{}{}
	for _, a := range history {
		bestWPM = math.Max(bestWPM, a.WPM)
		bestAccuracy = math.Max(bestAccuracy, a.Accuracy*100)
		if a.Difficulty == "hard" {
			hard++
		}
		langs[a.Language] = struct{}{}
	}

	known := make(map[string]time.Time, len(saved))
	for _, u := range saved {
		known[u.ID] = u.UnlockedAt
	}
	unlockedSet := append([]Unlocked(nil), saved...)

	var all, fresh []Achievement
	for _, def := range Definitions {
		var value float64
		switch def.Category {
		case CategorySpeed:
			value = bestWPM
		case CategoryAccuracy:
			value = bestAccuracy
		case CategoryConsistency:
			value = float64(streak.LongestStreak)
		case CategoryDiversity:
			value = float64(len(langs))
		case CategoryVolume:
			if def.ID == "hard_50" {
				value = float64(hard)
			} else {
				value = float64(len(history))
			}
		}
		a := Achievement{
			Definition: def,
			Unlocked:   value >= def.Requirement,
			Progress:   math.Min(value, def.Requirement),
		}
		if at, ok := known[def.ID]; ok {
			a.Unlocked = true
			a.UnlockedAt = at
		} else if a.Unlocked {
			a.UnlockedAt = now
			unlockedSet = append(unlockedSet, Unlocked{ID: def.ID, UnlockedAt: now})
			fresh = append(fresh, a)
		}
		all = append(all, a)
	}
	return all, unlockedSet, fresh
}
