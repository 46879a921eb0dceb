package snippet

import (
	"errors"
	"math/rand"
	"time"

	"github.com/verte-zerg/typrr/internal/model"
)

// ErrNoSnippets is returned when a filter leaves nothing to practice.
var ErrNoSnippets = errors.New("no snippets match the filter")

// Picker walks a filtered snippet list for practice mode.
type Picker struct {
	snippets []model.Snippet
	pos      int
	rnd      *rand.Rand
}

// NewPicker returns a Picker over the snippets matching lang and difficulty.
// With shuffle, the order is randomized using seed; seed 0 uses the current time.
func NewPicker(c *Catalog, lang, difficulty string, shuffle bool, seed int64) (*Picker, error) {
	snippets := c.Filter(lang, difficulty)
	if len(snippets) == 0 {
		return nil, ErrNoSnippets
	}
	p := &Picker{snippets: snippets}
	if shuffle {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		p.rnd = rand.New(rand.NewSource(seed))
		p.rnd.Shuffle(len(p.snippets), func(i, j int) {
			p.snippets[i], p.snippets[j] = p.snippets[j], p.snippets[i]
		})
	}
	return p, nil
}

// Len returns the number of candidate snippets.
func (p *Picker) Len() int {
	return len(p.snippets)
}

// Current returns the snippet under the cursor.
func (p *Picker) Current() model.Snippet {
	return p.snippets[p.pos]
}

// Next advances the cursor, wrapping around, and returns the new snippet.
func (p *Picker) Next() model.Snippet {
	p.pos = (p.pos + 1) % len(p.snippets)
	return p.snippets[p.pos]
}

// Random jumps to a random snippet other than the current one when possible.
func (p *Picker) Random() model.Snippet {
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(p.snippets) > 1 {
		next := p.rnd.Intn(len(p.snippets) - 1)
		if next >= p.pos {
			next++
		}
		p.pos = next
	}
	return p.snippets[p.pos]
}
