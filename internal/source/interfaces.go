// Package source provides the per-category adapters that pull random image
// candidates from the external animal APIs. Adapters are a pure I/O
// boundary: retry policy lives in the fetch pipeline, and only filters
// that depend on a single candidate's own metadata live here.
package source

import (
	"context"
	"errors"
	"strings"
)

// ErrSourceUnavailable wraps any per-attempt fetch failure: transport
// errors, non-2xx responses, and undecodable bodies. The fetch pipeline
// recovers by simply trying again within its attempt cap.
var ErrSourceUnavailable = errors.New("source unavailable")

// Candidate is one unvalidated fetch result. SizeBytes is zero when the
// source does not report a size.
type Candidate struct {
	URL       string
	SizeBytes int64
}

// Adapter pulls one random candidate from an external provider.
type Adapter interface {
	Fetch(ctx context.Context) (Candidate, error)
}

// Validator accepts or rejects a candidate on its own metadata alone.
type Validator func(Candidate) bool

// imageExtensions are the accepted image file suffixes. Some sources mix
// videos into their feeds, so everything else is rejected.
var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// hasImageExtension reports whether the url ends in an accepted image suffix.
func hasImageExtension(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
