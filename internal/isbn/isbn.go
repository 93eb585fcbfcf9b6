// Package isbn assigns catalog identifiers to new books.
//
// The identifier is a random decimal number in [Min, Max]. It is drawn again
// until the Checker reports it unused, with no retry limit.
package isbn

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
)

const (
	Min int64 = 1_000_000
	Max int64 = 999_999_999_999
)

// Checker reports whether an identifier is already held by a book.
type Checker interface {
	ISBNExists(isbn string) (bool, error)
}

// Generator draws unused identifiers.
type Generator struct {
	checker Checker

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a generator backed by a randomly seeded source.
func NewGenerator(checker Checker) *Generator {
	return NewGeneratorWithSource(checker, rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewGeneratorWithSource creates a generator drawing from src.
func NewGeneratorWithSource(checker Checker, src rand.Source) *Generator {
	return &Generator{checker: checker, rnd: rand.New(src)}
}

// Generate returns an identifier no current book carries.
func (g *Generator) Generate() (string, error) {
	for {
		candidate := g.draw()
		exists, err := g.checker.ISBNExists(candidate)
		if err != nil {
			return "", fmt.Errorf("check isbn %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (g *Generator) draw() string {
	g.mu.Lock()
	n := Min + g.rnd.Int64N(Max-Min+1)
	g.mu.Unlock()
	return strconv.FormatInt(n, 10)
}
