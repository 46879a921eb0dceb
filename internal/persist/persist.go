// Package persist records finished attempts locally, against the daily quota and remotely.
package persist

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
)

// Submitter sends an attempt to the remote API.
type Submitter interface {
	SubmitAttempt(ctx context.Context, token string, attempt model.Attempt) (model.Attempt, error)
}

// Observer is notified after an attempt has been recorded.
type Observer interface {
	Observe(ctx context.Context, attempt model.Attempt) error
}

// Submission is an in-flight remote save.
type Submission struct {
	done chan struct{}
	err  error
}

// Done is closed when the submission finishes.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission finishes and returns its error.
func (s *Submission) Wait() error {
	<-s.done
	return s.err
}

// Receipt describes what Record did.
type Receipt struct {
	Attempt model.Attempt
	// Daily is set for daily-mode attempts.
	Daily *progress.DailyRecord
	// Submission is nil when no credential is held.
	Submission *Submission
}

// Recorder persists finished attempts. Every step runs even if an earlier one failed.
type Recorder struct {
	history    *localstate.History
	credential localstate.Store[model.Credential]
	quota      *progress.Quota
	submitter  Submitter
	observers  []Observer
	timeout    time.Duration
	logf       func(format string, args ...any)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSubmitter enables remote saves for authenticated users.
func WithSubmitter(s Submitter) Option {
	return func(r *Recorder) {
		r.submitter = s
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		r.observers = append(r.observers, o)
	}
}

// WithTimeout bounds remote submissions.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		r.timeout = d
	}
}

// WithLogf redirects step failure logging, e.g. away from a full-screen UI.
func WithLogf(fn func(format string, args ...any)) Option {
	return func(r *Recorder) {
		r.logf = fn
	}
}

// NewRecorder returns a Recorder over backend. quota may be nil when daily mode is not used.
func NewRecorder(backend localstate.Backend, quota *progress.Quota, opts ...Option) *Recorder {
	r := &Recorder{
		history:    localstate.NewHistory(backend),
		credential: localstate.NewJSON[model.Credential](backend, localstate.KeyCredential, nil),
		quota:      quota,
		timeout:    10 * time.Second,
		logf:       logErrf,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores attempt. It never fails; step errors are logged.
func (r *Recorder) Record(ctx context.Context, attempt model.Attempt) Receipt {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	if attempt.Date == "" {
		attempt.Date = progress.Day(attempt.CreatedAt)
	}

	stored, err := r.history.Append(ctx, attempt)
	if err != nil {
		r.logf("failed to save attempt to history: %v\n", err)
		stored = attempt
	}
	receipt := Receipt{Attempt: stored}

	if attempt.Mode == model.ModeDaily && r.quota != nil {
		rec, err := r.quota.Consume(ctx, attempt.WPM)
		if err != nil {
			r.logf("failed to update daily quota: %v\n", err)
		}
		receipt.Daily = &rec
	}

	if cred := r.credential.Load(ctx); cred.Authenticated() && r.submitter != nil {
		receipt.Submission = r.submit(cred.Token, stored)
	}

	for _, o := range r.observers {
		if err := o.Observe(ctx, stored); err != nil {
			r.logf("failed to update progress: %v\n", err)
		}
	}
	return receipt
}

func (r *Recorder) submit(token string, attempt model.Attempt) *Submission {
	sub := &Submission{done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		// Outlives the caller: reset and quit do not cancel a save.
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if _, err := r.submitter.SubmitAttempt(ctx, token, attempt); err != nil {
			sub.err = fmt.Errorf("failed to submit attempt: %w", err)
			r.logf("%v\n", sub.err)
		}
	}()
	return sub
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
