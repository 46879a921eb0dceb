// Package snippet provides the catalog of code snippets to type.
package snippet

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/typrr/internal/model"
)

//go:embed snippets.toml
var builtinTOML string

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

type catalogFile struct {
	Snippets []model.Snippet `toml:"snippet"`
}

// Catalog is an ordered, id-indexed set of snippets.
type Catalog struct {
	snippets []model.Snippet
	byID     map[string]int
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	return parse(builtinTOML, "builtin catalog")
}

// LoadFile reads a user catalog in the same TOML format as the builtin one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(string(data), path)
}

func parse(data, source string) (*Catalog, error) {
	var file catalogFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if len(file.Snippets) == 0 {
		return nil, fmt.Errorf("%s has no snippets", source)
	}
	c := &Catalog{byID: map[string]int{}}
	for _, s := range file.Snippets {
		if err := validate(s); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if _, ok := c.byID[s.ID]; ok {
			return nil, fmt.Errorf("%s: duplicate snippet id %q", source, s.ID)
		}
		c.byID[s.ID] = len(c.snippets)
		c.snippets = append(c.snippets, s)
	}
	return c, nil
}

func validate(s model.Snippet) error {
	switch {
	case s.ID == "":
		return errors.New("snippet without id")
	case s.Lang == "":
		return fmt.Errorf("snippet %q has no lang", s.ID)
	case !difficulties[s.Difficulty]:
		return fmt.Errorf("snippet %q has invalid difficulty %q", s.ID, s.Difficulty)
	case strings.TrimSpace(s.Text) == "":
		return fmt.Errorf("snippet %q has empty text", s.ID)
	}
	return nil
}

// Merge returns a catalog with other appended. Snippets in other replace same-id entries.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{byID: map[string]int{}}
	for _, src := range []*Catalog{c, other} {
		if src == nil {
			continue
		}
		for _, s := range src.snippets {
			if idx, ok := merged.byID[s.ID]; ok {
				merged.snippets[idx] = s
				continue
			}
			merged.byID[s.ID] = len(merged.snippets)
			merged.snippets = append(merged.snippets, s)
		}
	}
	return merged
}

// Len returns the number of snippets.
func (c *Catalog) Len() int {
	return len(c.snippets)
}

// All returns every snippet in catalog order.
func (c *Catalog) All() []model.Snippet {
	return append([]model.Snippet(nil), c.snippets...)
}

// ByID looks up a snippet.
func (c *Catalog) ByID(id string) (model.Snippet, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.Snippet{}, false
	}
	return c.snippets[idx], true
}

// Languages returns the sorted set of languages.
func (c *Catalog) Languages() []string {
	seen := map[string]struct{}{}
	for _, s := range c.snippets {
		seen[s.Lang] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Filter returns snippets matching lang and difficulty. Empty values match everything.
func (c *Catalog) Filter(lang, difficulty string) []model.Snippet {
	var out []model.Snippet
	for _, s := range c.snippets {
		if lang != "" && s.Lang != lang {
			continue
		}
		if difficulty != "" && s.Difficulty != difficulty {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Daily returns the snippet of the day (YYYY-MM-DD). Every client picks the same one.
func (c *Catalog) Daily(day string) model.Snippet {
	return c.snippets[HashIndex(day, len(c.snippets))]
}

// HashIndex maps key into [0, n) with a 31-multiplier string hash.
func HashIndex(key string, n int) int {
	if n <= 0 {
		return 0
	}
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*31 + uint32(key[i])
	}
	return int(h % uint32(n))
}
