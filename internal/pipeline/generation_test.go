package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenSourceMonotonic(t *testing.T) {
	var src GenSource

	assert.Equal(t, Generation(0), src.Current())

	first := src.Next()
	second := src.Next()
	assert.Equal(t, Generation(1), first)
	assert.Equal(t, Generation(2), second)
	assert.Equal(t, second, src.Current())
}

func TestTokenGoesStaleOnNext(t *testing.T) {
	var src GenSource

	gen := src.Next()
	tok := src.TokenFor(gen)
	require.True(t, tok.IsCurrent())

	src.Next()
	assert.False(t, tok.IsCurrent(), "older generation token must go stale at once")

	fresh := src.TokenFor(src.Current())
	assert.True(t, fresh.IsCurrent())
}

func TestZeroTokenNeverCurrent(t *testing.T) {
	var tok Token
	assert.False(t, tok.IsCurrent())
}

func TestTokenGeneration(t *testing.T) {
	var src GenSource
	gen := src.Next()
	assert.Equal(t, gen, src.TokenFor(gen).Generation())
}

func TestGenSourceConcurrentNext(t *testing.T) {
	var src GenSource
	var wg sync.WaitGroup

	const workers = 8
	const perWorker = 100
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				src.Next()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, Generation(workers*perWorker), src.Current())
}
