// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"strings"
	"sync"

	"github.com/UNO-SOFT/sheetrw"
)

// registry maps sheet names to sheet handles, at most one per name.
//
// The embedded RWMutex is the lock of the owning writer: it guards the map,
// the closed flag and whatever else the owner decides (the row counters of
// the StreamWriter, the workbook's sheet list for the Writer).
// Methods ending in Locked must be called with the write lock held.
type registry[H any] struct {
	sync.RWMutex
	sheets map[string]H
	closed bool
}

// getOrCreateLocked returns the handle registered for name,
// or creates and registers one with create.
func (r *registry[H]) getOrCreateLocked(name string, create func(name string) (H, error)) (H, error) {
	var zero H
	if r.closed {
		return zero, sheetrw.ErrClosed
	}
	if h, ok := r.sheets[name]; ok {
		return h, nil
	}
	// The file format compares sheet names case insensitively.
	for k := range r.sheets {
		if strings.EqualFold(k, name) {
			return zero, fmt.Errorf("%q collides with %q: %w", name, k, sheetrw.ErrSheetExists)
		}
	}
	h, err := create(name)
	if err != nil {
		return zero, err
	}
	if r.sheets == nil {
		r.sheets = make(map[string]H)
	}
	r.sheets[name] = h
	return h, nil
}

// hasFoldLocked reports whether a sheet named name (ignoring case) is registered.
func (r *registry[H]) hasFoldLocked(name string) bool {
	for k := range r.sheets {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// closeLocked marks the registry closed and returns the registered handles.
func (r *registry[H]) closeLocked() (map[string]H, error) {
	if r.closed {
		return nil, sheetrw.ErrClosed
	}
	r.closed = true
	return r.sheets, nil
}
