package engine

import (
	"math"
	"time"
)

// minMinutes keeps WPM finite before any time has elapsed.
const minMinutes = 1e-6

// Metrics is a live scoring snapshot.
type Metrics struct {
	WPM      float64
	Accuracy float64
	Correct  int
	Typed    int
	Errors   int
	Elapsed  time.Duration
}

// Accuracy returns correct/typed, or 1 when nothing has been typed.
func Accuracy(correct, typed int) float64 {
	if typed <= 0 {
		return 1.0
	}
	return float64(correct) / float64(typed)
}

// WPM returns words per minute using five characters per word.
func WPM(correct int, elapsed time.Duration) float64 {
	minutes := math.Max(float64(elapsed.Milliseconds())/60000.0, minMinutes)
	return (float64(correct) / 5.0) / minutes
}

// Elapsed returns the time since the first keystroke. Once finished it is frozen.
func (s *Session) Elapsed(now time.Time) time.Duration {
	switch s.state {
	case StateIdle:
		return 0
	case StateFinished:
		return s.finishedAt.Sub(s.startedAt)
	}
	if now.Before(s.startedAt) {
		return 0
	}
	return now.Sub(s.startedAt)
}

// Metrics computes the current score from live state.
func (s *Session) Metrics(now time.Time) Metrics {
	correct := CountCorrect(s.target, s.input)
	elapsed := s.Elapsed(now)
	return Metrics{
		WPM:      WPM(correct, elapsed),
		Accuracy: Accuracy(correct, s.typed),
		Correct:  correct,
		Typed:    s.typed,
		Errors:   s.errors,
		Elapsed:  elapsed,
	}
}
