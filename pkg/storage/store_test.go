package storage

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkVisitedFirstWriterWins(t *testing.T) {
	s := NewMemoryStore()

	assert.True(t, s.MarkVisited("https://example.com/"))
	assert.False(t, s.MarkVisited("https://example.com/"))
	assert.True(t, s.MarkVisited("https://example.com/other"))

	assert.True(t, s.Visited("https://example.com/"))
	assert.False(t, s.Visited("https://example.com/missing"))
	assert.Equal(t, 2, s.Count())
}

func TestMarkVisitedConcurrent(t *testing.T) {
	s := NewMemoryStore()

	const workers = 64
	var won atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.MarkVisited("https://example.com/contested") {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly one goroutine observes the first-writer result
	assert.Equal(t, int64(1), won.Load())
	assert.Equal(t, 1, s.Count())
}
