package model

import "errors"

var (
	// ErrEmptyBacklog means fewer than two entries are queued for the
	// category. It is a state, not a failure: replenishment is expected
	// to be in progress and callers should show a loading indicator.
	ErrEmptyBacklog = errors.New("backlog has fewer than two entries")

	// ErrBacklogEntryGone means a submitted backlog entry no longer
	// exists, typically because the same pair was already committed.
	ErrBacklogEntryGone = errors.New("backlog entry no longer present")

	// ErrUnknownCategory means the category is not part of the closed set.
	ErrUnknownCategory = errors.New("unknown category")
)
