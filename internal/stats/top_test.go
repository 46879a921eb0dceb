package stats

import (
	"testing"

	"github.com/verte-zerg/typrr/internal/model"
)

func TestTopAndWeakestSnippets(t *testing.T) {
	history := []model.Attempt{
		{SnippetID: "b", Accuracy: 0.9, WPM: 40},
		{SnippetID: "a", Accuracy: 0.7, WPM: 30},
		{SnippetID: "b", Accuracy: 0.8, WPM: 50},
		{SnippetID: "c", Accuracy: 1.0, WPM: 60},
	}
	top := TopSnippets(history, 2)
	if len(top) != 2 || top[0].SnippetID != "b" || top[0].Attempts != 2 || top[1].SnippetID != "a" {
		t.Fatalf("unexpected top snippets: %+v", top)
	}
	if top[0].AverageWPM != 45 {
		t.Fatalf("unexpected average wpm %v", top[0].AverageWPM)
	}
	weak := WeakestSnippets(history, 5)
	if len(weak) != 3 || weak[0].SnippetID != "a" || weak[2].SnippetID != "c" {
		t.Fatalf("unexpected weakest snippets: %+v", weak)
	}
	if TopSnippets(nil, 3) != nil {
		t.Fatalf("expected nil for empty history")
	}
}
