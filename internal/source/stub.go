package source

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StubAdapter returns synthetic image URLs (for development/testing).
// Each fetch yields a fresh URL so dedup never starves the pipeline.
type StubAdapter struct {
	Prefix  string
	counter atomic.Int64
}

func (a *StubAdapter) Fetch(_ context.Context) (Candidate, error) {
	n := a.counter.Add(1)
	return Candidate{
		URL:       fmt.Sprintf("https://stub.local/%s/%d.jpg", a.Prefix, n),
		SizeBytes: 1024,
	}, nil
}
