package snippet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustBuiltin(t *testing.T) *Catalog {
	t.Helper()
	c, err := Builtin()
	if err != nil {
		t.Fatalf("builtin catalog: %v", err)
	}
	return c
}

func TestBuiltinCatalog(t *testing.T) {
	c := mustBuiltin(t)
	if c.Len() < 30 {
		t.Fatalf("expected full catalog, got %d snippets", c.Len())
	}
	s, ok := c.ByID("py_factorial")
	if !ok {
		t.Fatalf("expected py_factorial")
	}
	if !strings.HasPrefix(s.Text, "def factorial(n):\n    if n <= 1:") {
		t.Fatalf("indentation not preserved: %q", s.Text)
	}
	if strings.HasSuffix(s.Text, "\n") {
		t.Fatalf("trailing newline kept: %q", s.Text)
	}
}

func TestLanguagesSortedUnique(t *testing.T) {
	langs := mustBuiltin(t).Languages()
	for i := 1; i < len(langs); i++ {
		if langs[i-1] >= langs[i] {
			t.Fatalf("languages not sorted unique: %v", langs)
		}
	}
	if len(langs) != 10 {
		t.Fatalf("expected 10 languages, got %v", langs)
	}
}

func TestFilter(t *testing.T) {
	c := mustBuiltin(t)
	for _, s := range c.Filter("go", "") {
		if s.Lang != "go" {
			t.Fatalf("unexpected lang %q", s.Lang)
		}
	}
	hardPython := c.Filter("python", "hard")
	if len(hardPython) != 1 || hardPython[0].ID != "py_quicksort" {
		t.Fatalf("unexpected hard python snippets: %+v", hardPython)
	}
	if len(c.Filter("", "")) != c.Len() {
		t.Fatalf("empty filter should match everything")
	}
}

func TestDailyIsStable(t *testing.T) {
	c := mustBuiltin(t)
	first := c.Daily("2026-05-04")
	for i := 0; i < 5; i++ {
		if got := c.Daily("2026-05-04"); got.ID != first.ID {
			t.Fatalf("daily snippet changed: %s vs %s", got.ID, first.ID)
		}
	}
}

func TestHashIndex(t *testing.T) {
	// "ab" = 97*31 + 98
	if got := HashIndex("ab", 1000); got != (97*31+98)%1000 {
		t.Fatalf("unexpected hash index %d", got)
	}
	if got := HashIndex("anything", 0); got != 0 {
		t.Fatalf("expected 0 for empty range, got %d", got)
	}
	for _, day := range []string{"2026-01-01", "2026-12-31", "1999-07-15"} {
		if got := HashIndex(day, 7); got < 0 || got >= 7 {
			t.Fatalf("index out of range: %d", got)
		}
	}
}

func TestLoadFileAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.toml")
	content := `[[snippet]]
id = "py_factorial"
lang = "python"
difficulty = "easy"
category = "algorithms"
text = '''
print("override")'''

[[snippet]]
id = "zig_hello"
lang = "zig"
difficulty = "easy"
category = "basics"
text = '''
const std = @import("std");'''
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	user, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	base := mustBuiltin(t)
	merged := base.Merge(user)
	if merged.Len() != base.Len()+1 {
		t.Fatalf("expected one new snippet, got %d vs %d", merged.Len(), base.Len())
	}
	if s, _ := merged.ByID("py_factorial"); s.Text != `print("override")` {
		t.Fatalf("expected override, got %q", s.Text)
	}
	if _, ok := merged.ByID("zig_hello"); !ok {
		t.Fatalf("expected zig_hello")
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ``},
		{"bad difficulty", "[[snippet]]\nid = \"x\"\nlang = \"go\"\ndifficulty = \"insane\"\ntext = \"x\"\n"},
		{"missing text", "[[snippet]]\nid = \"x\"\nlang = \"go\"\ndifficulty = \"easy\"\n"},
		{"duplicate", "[[snippet]]\nid = \"x\"\nlang = \"go\"\ndifficulty = \"easy\"\ntext = \"a\"\n[[snippet]]\nid = \"x\"\nlang = \"go\"\ndifficulty = \"easy\"\ntext = \"b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snippets.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPicker(t *testing.T) {
	c := mustBuiltin(t)
	p, err := NewPicker(c, "go", "", false, 0)
	if err != nil {
		t.Fatalf("new picker: %v", err)
	}
	first := p.Current()
	seen := map[string]bool{first.ID: true}
	for i := 1; i < p.Len(); i++ {
		seen[p.Next().ID] = true
	}
	if len(seen) != p.Len() {
		t.Fatalf("expected every snippet visited once, got %d", len(seen))
	}
	if p.Next().ID != first.ID {
		t.Fatalf("expected wrap to first snippet")
	}
	before := p.Current().ID
	if p.Random().ID == before {
		t.Fatalf("random should move off the current snippet")
	}
	if _, err := NewPicker(c, "cobol", "", false, 0); err != ErrNoSnippets {
		t.Fatalf("expected ErrNoSnippets, got %v", err)
	}
}

func TestPickerShuffleIsSeeded(t *testing.T) {
	c := mustBuiltin(t)
	a, err := NewPicker(c, "", "", true, 42)
	if err != nil {
		t.Fatalf("picker: %v", err)
	}
	b, err := NewPicker(c, "", "", true, 42)
	if err != nil {
		t.Fatalf("picker: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		if a.Current().ID != b.Current().ID {
			t.Fatalf("same seed produced different order at %d", i)
		}
		a.Next()
		b.Next()
	}
}
