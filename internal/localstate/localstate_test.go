package localstate

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/typrr/internal/model"
)

type prefs struct {
	Theme string `json:"theme"`
	Sound bool   `json:"sound"`
}

func TestJSONLoadDefaultWhenMissing(t *testing.T) {
	st := NewJSON(NewMemory(), KeyPrefs, func() prefs { return prefs{Theme: "dark"} })
	got := st.Load(context.Background())
	if got.Theme != "dark" {
		t.Fatalf("expected default theme, got %+v", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewJSON[prefs](NewMemory(), KeyPrefs, nil)
	if err := st.Save(ctx, prefs{Theme: "solarized", Sound: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := st.Load(ctx); got.Theme != "solarized" || !got.Sound {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestJSONCorruptValueFallsBack(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	if err := mem.Put(ctx, KeyXP, []byte("{not json")); err != nil {
		t.Fatalf("put: %v", err)
	}
	st := NewJSON(mem, KeyXP, func() int { return 0 })
	if got := st.Load(ctx); got != 0 {
		t.Fatalf("expected fallback 0, got %d", got)
	}
}

func TestHistoryAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemory())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		stored, err := h.Append(ctx, model.Attempt{
			SnippetID: "go_prime",
			WPM:       float64(40 + i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if stored.ID == "" {
			t.Fatalf("expected generated id")
		}
	}
	if len(h.All(ctx)) != 3 {
		t.Fatalf("expected 3 entries")
	}
	recent := h.Recent(ctx, 2)
	if len(recent) != 2 || recent[0].WPM != 42 || recent[1].WPM != 41 {
		t.Fatalf("unexpected recent order: %+v", recent)
	}
	if err := h.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(h.All(ctx)) != 0 {
		t.Fatalf("expected empty history after clear")
	}
}
