package progress

import "math"

// WPMMilestones are the speeds announced during a session.
var WPMMilestones = []int{50, 75, 100, 125, 150, 200}

// Milestones announces each WPM milestone at most once per session.
type Milestones struct {
	last  int
	shown map[int]bool
}

// Check returns the milestone newly reached at wpm, if any.
func (m *Milestones) Check(wpm float64) (int, bool) {
	if m.shown == nil {
		m.shown = map[int]bool{}
	}
	rounded := int(math.Floor(wpm))
	for _, milestone := range WPMMilestones {
		if rounded >= milestone && !m.shown[milestone] && m.last < milestone {
			m.last = milestone
			m.shown[milestone] = true
			return milestone, true
		}
	}
	return 0, false
}

// Reset forgets the milestones shown so far.
func (m *Milestones) Reset() {
	m.last = 0
	m.shown = nil
}
