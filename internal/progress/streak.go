package progress

import "time"

// historyDays caps the practice history kept in a streak record.
const historyDays = 365

// Streak is the persisted daily-practice record.
type Streak struct {
	CurrentStreak    int      `json:"currentStreak"`
	LongestStreak    int      `json:"longestStreak"`
	LastPracticeDate string   `json:"lastPracticeDate,omitempty"`
	TotalDays        int      `json:"totalDays"`
	PracticeHistory  []string `json:"practiceHistory"`
}

// StreakReward is granted the day a streak reaches Days.
type StreakReward struct {
	Days        int
	Title       string
	Description string
	XPBonus     int
}

// StreakRewards lists the streak milestones in ascending order.
var StreakRewards = []StreakReward{
	{Days: 3, Title: "Getting Started", Description: "3 days in a row!", XPBonus: 50},
	{Days: 7, Title: "Week Warrior", Description: "A full week of practice!", XPBonus: 100},
	{Days: 14, Title: "Two Week Champion", Description: "14 days of dedication!", XPBonus: 200},
	{Days: 30, Title: "Month Master", Description: "30 days of consistent practice!", XPBonus: 500},
	{Days: 60, Title: "Dedicated Coder", Description: "60 days of unwavering commitment!", XPBonus: 1000},
	{Days: 100, Title: "Century Club", Description: "100 days of mastery!", XPBonus: 2000},
}

// StreakUpdate describes what practicing on a given day did to a streak.
type StreakUpdate struct {
	Streak Streak
	NewDay bool
	Reward *StreakReward
}

// UpdateStreak records practice on day (YYYY-MM-DD). Practicing twice on the same day is a no-op.
func UpdateStreak(s Streak, day string) StreakUpdate {
	if s.LastPracticeDate == day {
		return StreakUpdate{Streak: s}
	}
	history := append([]string(nil), s.PracticeHistory...)
	var reward *StreakReward

	switch {
	case s.LastPracticeDate == "":
		s.CurrentStreak = 1
		s.LongestStreak = 1
		s.TotalDays = 1
		history = []string{day}
	case consecutive(s.LastPracticeDate, day):
		s.CurrentStreak++
		s.TotalDays++
		history = append(history, day)
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		for i := range StreakRewards {
			if StreakRewards[i].Days == s.CurrentStreak {
				r := StreakRewards[i]
				reward = &r
				break
			}
		}
	default:
		s.CurrentStreak = 1
		s.TotalDays++
		history = append(history, day)
	}

	s.LastPracticeDate = day
	if len(history) > historyDays {
		history = history[len(history)-historyDays:]
	}
	s.PracticeHistory = history
	return StreakUpdate{Streak: s, NewDay: true, Reward: reward}
}

func consecutive(prev, next string) bool {
	a, err := time.Parse(dayLayout, prev)
	if err != nil {
		return false
	}
	b, err := time.Parse(dayLayout, next)
	if err != nil {
		return false
	}
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return diff == 24*time.Hour
}

// CalendarDay is one cell of the practice calendar.
type CalendarDay struct {
	Date      string
	Practiced bool
}

// Calendar returns the last days days ending at today, oldest first.
func Calendar(s Streak, today time.Time, days int) []CalendarDay {
	practiced := make(map[string]struct{}, len(s.PracticeHistory))
	for _, d := range s.PracticeHistory {
		practiced[d] = struct{}{}
	}
	out := make([]CalendarDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := Day(today.AddDate(0, 0, -i))
		_, ok := practiced[date]
		out = append(out, CalendarDay{Date: date, Practiced: ok})
	}
	return out
}
