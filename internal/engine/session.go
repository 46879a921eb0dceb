package engine

import "time"

// State is the lifecycle phase of a session.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Outcome reports what a single Apply call did.
type Outcome struct {
	Accepted bool
	// Finished is true only for the event that completed the session.
	Finished bool
}

// Result is the final snapshot of a finished session.
type Result struct {
	Metrics
	StartedAt  time.Time
	FinishedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLock installs a predicate that rejects every keystroke while it returns true.
func WithLock(locked func() bool) Option {
	return func(s *Session) {
		s.locked = locked
	}
}

// WithOnFinish registers a callback run once when the session finishes.
func WithOnFinish(fn func(Result)) Option {
	return func(s *Session) {
		s.onFinish = fn
	}
}

// Session tracks one attempt at typing a target text.
// It is not safe for concurrent use; callers feed events from a single goroutine.
type Session struct {
	target []rune
	input  []rune

	typed  int
	errors int

	state      State
	startedAt  time.Time
	finishedAt time.Time
	fired      bool

	locked   func() bool
	onFinish func(Result)
}

// NewSession creates an idle session for target.
func NewSession(target string, opts ...Option) *Session {
	s := &Session{target: []rune(target)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset discards all progress and returns the session to idle.
func (s *Session) Reset() {
	s.input = nil
	s.typed = 0
	s.errors = 0
	s.state = StateIdle
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.fired = false
}

// Target returns the reference text.
func (s *Session) Target() []rune { return s.target }

// Input returns the runes typed so far.
func (s *Session) Input() []rune { return s.input }

// Typed returns the keystroke count used as the accuracy denominator.
func (s *Session) Typed() int { return s.typed }

// Errors returns the cumulative number of mistyped keystrokes.
func (s *Session) Errors() int { return s.errors }

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Finished reports whether the session has completed.
func (s *Session) Finished() bool { return s.state == StateFinished }

// StartedAt returns the time of the first accepted keystroke, or zero.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Locked reports whether the lock predicate currently rejects input.
func (s *Session) Locked() bool {
	return s.locked != nil && s.locked()
}

// Diff returns the per-position state of the current input.
func (s *Session) Diff() []CharState {
	return Diff(s.target, s.input)
}

// Apply processes one keystroke that happened at time at.
func (s *Session) Apply(key Key, at time.Time) Outcome {
	if s.state == StateFinished || s.Locked() {
		return Outcome{}
	}
	key = key.normalize()

	if key.Kind == KeyBackspace {
		if len(s.input) == 0 {
			return Outcome{}
		}
		s.start(at)
		s.input = s.input[:len(s.input)-1]
		if s.typed > 0 {
			s.typed--
		}
		return Outcome{Accepted: true, Finished: s.checkFinished(at)}
	}

	pos := len(s.input)
	if pos >= len(s.target) {
		return Outcome{}
	}
	s.start(at)
	expected := s.target[pos]

	switch key.Kind {
	case KeyEnter:
		s.input = append(s.input, '\n')
		s.typed++
		if expected != '\n' {
			s.errors++
		}
		for next := pos + 1; next < len(s.target) && s.target[next] == ' '; next++ {
			s.input = append(s.input, ' ')
			s.typed++
		}
	case KeyTab:
		s.input = append(s.input, '\t')
		s.typed++
		if expected != '\t' {
			s.errors++
		}
	default:
		s.input = append(s.input, key.Rune)
		s.typed++
		if key.Rune != expected {
			s.errors++
		}
	}
	return Outcome{Accepted: true, Finished: s.checkFinished(at)}
}

func (s *Session) start(at time.Time) {
	if s.state != StateIdle {
		return
	}
	s.state = StateRunning
	s.startedAt = at
}

func (s *Session) checkFinished(at time.Time) bool {
	if s.fired || len(s.target) == 0 || len(s.input) != len(s.target) {
		return false
	}
	for i, r := range s.target {
		if s.input[i] != r {
			return false
		}
	}
	s.fired = true
	s.state = StateFinished
	s.finishedAt = at
	if s.onFinish != nil {
		s.onFinish(s.Result())
	}
	return true
}

// Result returns the final snapshot. It is only meaningful once the session is finished.
func (s *Session) Result() Result {
	return Result{
		Metrics:    s.Metrics(s.finishedAt),
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}
