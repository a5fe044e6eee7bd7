// Package parallel provides parallel execution utilities for the minnet engine.
package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrPanic wraps a panic recovered from a ForEach unit.
var ErrPanic = errors.New("parallel: unit panicked")

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers < 2 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForEach runs body(i) for every i in [0, n) on at most limit goroutines at a
// time and blocks until all of them have returned.
//
// Every unit runs even when an earlier one fails; the first error observed is
// returned after the join. A panicking unit is recovered and reported as an
// error wrapping ErrPanic.
func ForEach(n, limit int, body func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	sem := make(chan struct{}, limit)

	wg.Add(n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := run(body, i); err != nil {
				once.Do(func() { firstErr = err })
			}
		}(i)
	}
	wg.Wait()

	return firstErr
}

func run(body func(i int) error, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: unit %d: %v", ErrPanic, i, r)
		}
	}()
	return body(i)
}
