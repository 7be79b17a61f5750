// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jsonld

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContextLoad matches every ContextLoadError.
	ErrContextLoad = errors.New("context load failed")

	// ErrContextCycle matches every ContextCycleError.
	ErrContextCycle = errors.New("context cycle")
)

// ContextLoadError reports a context that could not be fetched or processed.
type ContextLoadError struct {
	URI string
	Err error
}

func (e *ContextLoadError) Error() string {
	return fmt.Sprintf("load context %s: %v", e.URI, e.Err)
}

func (e *ContextLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrContextLoad) true for any ContextLoadError.
func (e *ContextLoadError) Is(target error) bool { return target == ErrContextLoad }

// ContextCycleError reports a context that transitively references itself.
type ContextCycleError struct {
	URI string
	// Chain lists the contexts being processed when the cycle closed, ending
	// with URI.
	Chain []string
}

func (e *ContextCycleError) Error() string {
	return fmt.Sprintf("context %s references itself: %s", e.URI, strings.Join(e.Chain, " -> "))
}

// Is makes errors.Is(err, ErrContextCycle) true for any ContextCycleError.
func (e *ContextCycleError) Is(target error) bool { return target == ErrContextCycle }
