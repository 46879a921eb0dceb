package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/typrr/internal/model"
)

// SnippetStats aggregates attempts at one snippet.
type SnippetStats struct {
	SnippetID   string
	Language    string
	Attempts    int
	AverageWPM  float64
	AverageAcc  float64
	TotalErrors int
}

func bySnippet(history []model.Attempt) []SnippetStats {
	index := map[string]int{}
	var out []SnippetStats
	for _, a := range history {
		i, ok := index[a.SnippetID]
		if !ok {
			i = len(out)
			index[a.SnippetID] = i
			out = append(out, SnippetStats{SnippetID: a.SnippetID, Language: a.Language})
		}
		s := &out[i]
		s.Attempts++
		s.AverageWPM += a.WPM
		s.AverageAcc += a.Accuracy
		s.TotalErrors += a.Errors
	}
	for i := range out {
		out[i].AverageWPM /= float64(out[i].Attempts)
		out[i].AverageAcc /= float64(out[i].Attempts)
	}
	return out
}

// TopSnippets returns the n most practiced snippets.
func TopSnippets(history []model.Attempt, n int) []SnippetStats {
	items := bySnippet(history)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Attempts == items[j].Attempts {
			return items[i].SnippetID < items[j].SnippetID
		}
		return items[i].Attempts > items[j].Attempts
	})
	return head(items, n)
}

// WeakestSnippets returns the n snippets with the lowest average accuracy.
func WeakestSnippets(history []model.Attempt, n int) []SnippetStats {
	items := bySnippet(history)
	sort.Slice(items, func(i, j int) bool {
		if items[i].AverageAcc == items[j].AverageAcc {
			return items[i].SnippetID < items[j].SnippetID
		}
		return items[i].AverageAcc < items[j].AverageAcc
	})
	return head(items, n)
}

func head(items []SnippetStats, n int) []SnippetStats {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	return items[:min(n, len(items))]
}

// RenderSnippetTable prints per-snippet aggregates under title.
func RenderSnippetTable(w io.Writer, title string, items []SnippetStats) error {
	if len(items) == 0 {
		return nil
	}
	headers := []string{"Snippet", "Language", "Attempts", "Avg WPM", "Accuracy", "Errors"}
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			s.SnippetID,
			s.Language,
			fmt.Sprintf("%d", s.Attempts),
			fmt.Sprintf("%.1f", s.AverageWPM),
			fmt.Sprintf("%.1f%%", s.AverageAcc*100),
			fmt.Sprintf("%d", s.TotalErrors),
		})
	}
	lines := append([]string{title}, formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true})...)
	return writeLines(w, append(lines, ""))
}
