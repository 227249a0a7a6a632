package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"

	_ "embed"
)

//go:embed questions.json
var questionsJSON []byte

// Catalog holds the static question set for a process. Loaded once at
// startup, read-only afterwards.
type Catalog struct {
	questions []Question
}

func LoadCatalog() (*Catalog, error) {
	var qs []Question
	if err := json.Unmarshal(questionsJSON, &qs); err != nil {
		return nil, fmt.Errorf("parse question catalog: %w", err)
	}
	for _, q := range qs {
		if !q.Category.Valid() {
			return nil, fmt.Errorf("question %q: invalid category %d", q.ID, q.Category)
		}
	}
	return &Catalog{questions: qs}, nil
}

// NewCatalog wraps an explicit question set, bypassing the embedded one.
func NewCatalog(questions []Question) *Catalog {
	return &Catalog{questions: questions}
}

func (c *Catalog) Len() int { return len(c.questions) }

func (c *Catalog) available(category Category, settings GameSettings, answered []string, anyCategory bool) []Question {
	var out []Question
	for _, q := range c.questions {
		if !anyCategory && q.Category != category {
			continue
		}
		if !slices.Contains(settings.SelectedCategories, q.Category) {
			continue
		}
		if slices.Contains(answered, q.ID) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Select picks an unanswered question from the rolled category, falling
// back to any enabled category once the rolled one is exhausted. The
// second return is false only when every enabled question has been used;
// callers must treat that as end of game rather than advancing.
func (c *Catalog) Select(category Category, settings GameSettings, answered []string) (Question, bool) {
	pool := c.available(category, settings, answered, false)
	if len(pool) == 0 {
		pool = c.available(0, settings, answered, true)
	}
	if len(pool) == 0 {
		return Question{}, false
	}
	return pool[rand.Intn(len(pool))], true
}
