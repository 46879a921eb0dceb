package progress

import "math"

// Level is one rank of the XP ladder.
type Level struct {
	Level int
	Name  string
	MinXP int
}

// Levels lists the XP ladder in ascending order.
var Levels = []Level{
	{Level: 1, Name: "Beginner", MinXP: 0},
	{Level: 2, Name: "Novice", MinXP: 100},
	{Level: 3, Name: "Apprentice", MinXP: 250},
	{Level: 4, Name: "Intermediate", MinXP: 500},
	{Level: 5, Name: "Advanced", MinXP: 1000},
	{Level: 6, Name: "Expert", MinXP: 2000},
	{Level: 7, Name: "Master", MinXP: 4000},
	{Level: 8, Name: "Grandmaster", MinXP: 8000},
	{Level: 9, Name: "Elite", MinXP: 15000},
	{Level: 10, Name: "Legend", MinXP: 30000},
}

var difficultyMultiplier = map[string]float64{
	"easy":   1.0,
	"medium": 1.5,
	"hard":   2.0,
}

// CalculateXP returns the XP earned by one finished attempt. The result is at least 5.
func CalculateXP(wpm, accuracy float64, errors int, difficulty string) int {
	base := 10.0

	switch {
	case wpm >= 100:
		base += 50
	case wpm >= 80:
		base += 30
	case wpm >= 60:
		base += 20
	case wpm >= 40:
		base += 10
	}

	switch {
	case accuracy >= 0.99:
		base += 20
	case accuracy >= 0.95:
		base += 15
	case accuracy >= 0.90:
		base += 10
	case accuracy >= 0.80:
		base += 5
	}

	base -= math.Min(float64(errors)*2, 20)

	mult, ok := difficultyMultiplier[difficulty]
	if !ok {
		mult = 1.0
	}
	total := int(math.Floor(base*mult + 0.5))
	if total < 5 {
		return 5
	}
	return total
}

// LevelFor returns the highest level reached with total XP.
func LevelFor(total int) Level {
	for i := len(Levels) - 1; i >= 0; i-- {
		if total >= Levels[i].MinXP {
			return Levels[i]
		}
	}
	return Levels[0]
}

func nextLevel(l Level) (Level, bool) {
	if l.Level >= len(Levels) {
		return Level{}, false
	}
	return Levels[l.Level], true
}

// XPState summarizes a total for display.
type XPState struct {
	Total          int
	Level          Level
	CurrentLevelXP int
	ToNextLevel    int
	// Progress is the percentage (0-100) toward the next level; 100 at the top level.
	Progress float64
}

// StateFor derives the display state of total XP.
func StateFor(total int) XPState {
	level := LevelFor(total)
	state := XPState{Total: total, Level: level, CurrentLevelXP: total - level.MinXP, Progress: 100}
	next, ok := nextLevel(level)
	if !ok {
		return state
	}
	state.ToNextLevel = next.MinXP - total
	needed := next.MinXP - level.MinXP
	state.Progress = math.Min(100, float64(state.CurrentLevelXP)/float64(needed)*100)
	return state
}
