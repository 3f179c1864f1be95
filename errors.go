package deadsched

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnsafeRequest       = errors.New("request would leave the system unsafe")
	ErrInvalidRelease      = errors.New("invalid release")
	ErrUnknownProcess      = errors.New("unknown process")
	ErrUnknownStrategy     = errors.New("unknown resolution strategy")
	ErrUnknownAlgorithm    = errors.New("unknown scheduling algorithm")
	ErrResolutionExhausted = errors.New("deadlock persists after exhausting the deadlocked set")
	ErrInvalidScenario     = errors.New("invalid scenario")
	ErrInvalidQuantum      = errors.New("time quantum must be positive")
)
