package idgen

import "github.com/google/uuid"

// NewFunc produces run and schedule identifiers; tests may swap it for a deterministic one.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }
