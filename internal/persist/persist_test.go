package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/typrr/internal/engine"
	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
	"github.com/verte-zerg/typrr/internal/progress"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	tokens   []string
	attempts []model.Attempt
	err      error
}

func (f *fakeSubmitter) SubmitAttempt(_ context.Context, token string, attempt model.Attempt) (model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.attempts = append(f.attempts, attempt)
	return attempt, f.err
}

type observerFunc func(context.Context, model.Attempt) error

func (f observerFunc) Observe(ctx context.Context, a model.Attempt) error { return f(ctx, a) }

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}
func (failingBackend) Put(context.Context, string, []byte) error { return errors.New("disk gone") }
func (failingBackend) Delete(context.Context, string) error      { return errors.New("disk gone") }

func quietLog(string, ...any) {}

func login(t *testing.T, backend localstate.Backend) {
	t.Helper()
	cred := localstate.NewJSON[model.Credential](backend, localstate.KeyCredential, nil)
	if err := cred.Save(context.Background(), model.Credential{Token: "tok", UserID: "u1"}); err != nil {
		t.Fatalf("save credential: %v", err)
	}
}

func TestRecordAnonymous(t *testing.T) {
	ctx := context.Background()
	mem := localstate.NewMemory()
	sub := &fakeSubmitter{}
	r := NewRecorder(mem, nil, WithSubmitter(sub), WithLogf(quietLog))

	receipt := r.Record(ctx, model.Attempt{SnippetID: "go_prime", Mode: model.ModePractice, WPM: 40})
	if receipt.Submission != nil {
		t.Fatalf("anonymous attempt must not be submitted")
	}
	if receipt.Daily != nil {
		t.Fatalf("practice attempt must not touch the quota")
	}
	if receipt.Attempt.ID == "" || receipt.Attempt.Date == "" {
		t.Fatalf("expected id and date set, got %+v", receipt.Attempt)
	}
	if got := len(localstate.NewHistory(mem).All(ctx)); got != 1 {
		t.Fatalf("expected 1 history entry, got %d", got)
	}
}

func TestRecordSubmitsWhenAuthenticated(t *testing.T) {
	ctx := context.Background()
	mem := localstate.NewMemory()
	login(t, mem)
	sub := &fakeSubmitter{}
	r := NewRecorder(mem, nil, WithSubmitter(sub), WithLogf(quietLog))

	receipt := r.Record(ctx, model.Attempt{SnippetID: "go_prime", Mode: model.ModePractice})
	if receipt.Submission == nil {
		t.Fatalf("expected a submission")
	}
	select {
	case <-receipt.Submission.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("submission did not finish")
	}
	if err := receipt.Submission.Wait(); err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	if len(sub.tokens) != 1 || sub.tokens[0] != "tok" || sub.attempts[0].SnippetID != "go_prime" {
		t.Fatalf("unexpected submission %+v %+v", sub.tokens, sub.attempts)
	}
}

func TestRemoteFailureDoesNotStopOtherSteps(t *testing.T) {
	ctx := context.Background()
	mem := localstate.NewMemory()
	login(t, mem)
	sub := &fakeSubmitter{err: errors.New("offline")}
	observed := 0
	r := NewRecorder(mem, progress.NewQuota(mem, 3),
		WithSubmitter(sub),
		WithObserver(observerFunc(func(context.Context, model.Attempt) error {
			observed++
			return errors.New("observer broke")
		})),
		WithLogf(quietLog))

	receipt := r.Record(ctx, model.Attempt{Mode: model.ModeDaily, WPM: 50})
	if err := receipt.Submission.Wait(); err == nil {
		t.Fatalf("expected submission error")
	}
	if observed != 1 {
		t.Fatalf("expected observer notified once, got %d", observed)
	}
	if receipt.Daily == nil || receipt.Daily.Attempts != 1 {
		t.Fatalf("expected quota consumed, got %+v", receipt.Daily)
	}
}

func TestRecordWithBrokenStorage(t *testing.T) {
	observed := 0
	r := NewRecorder(failingBackend{}, progress.NewQuota(failingBackend{}, 3),
		WithObserver(observerFunc(func(context.Context, model.Attempt) error {
			observed++
			return nil
		})),
		WithLogf(quietLog))
	receipt := r.Record(context.Background(), model.Attempt{Mode: model.ModeDaily, SnippetID: "x"})
	if receipt.Attempt.SnippetID != "x" {
		t.Fatalf("expected attempt echoed back")
	}
	if observed != 1 {
		t.Fatalf("observers must run even when storage fails")
	}
}

func TestDailyQuotaLocksFourthSession(t *testing.T) {
	ctx := context.Background()
	mem := localstate.NewMemory()
	quota := progress.NewQuota(mem, 3)
	day := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	quota.SetClock(func() time.Time { return day })
	r := NewRecorder(mem, quota, WithLogf(quietLog))

	newSession := func() *engine.Session {
		return engine.NewSession("ab",
			engine.WithLock(quota.Lock(ctx)),
			engine.WithOnFinish(func(res engine.Result) {
				r.Record(ctx, model.Attempt{Mode: model.ModeDaily, WPM: res.WPM, CreatedAt: res.FinishedAt})
			}))
	}

	for i := 0; i < 3; i++ {
		s := newSession()
		s.Apply(engine.Rune('a'), day)
		s.Apply(engine.Rune('b'), day.Add(time.Second))
		if !s.Finished() {
			t.Fatalf("session %d did not finish", i+1)
		}
	}

	fourth := newSession()
	for _, k := range []engine.Key{engine.Rune('a'), engine.Rune('b'), engine.Enter, engine.Tab, engine.Backspace} {
		if out := fourth.Apply(k, day); out.Accepted {
			t.Fatalf("fourth daily session accepted %v", k)
		}
	}
	if fourth.State() != engine.StateIdle {
		t.Fatalf("fourth session left idle: %s", fourth.State())
	}

	day = day.Add(24 * time.Hour)
	fifth := newSession()
	if out := fifth.Apply(engine.Rune('a'), day); !out.Accepted {
		t.Fatalf("quota should reset on the next day")
	}
}
