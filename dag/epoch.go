// Package dag implements the symbolic state store behind the
// library's lazy evaluation layer: a StateArena of Op nodes recorded
// under an Epoch, and the mimicking type dag.Bits that builds those
// nodes as ordinary-looking arithmetic is performed on it.
//
// There are no thread-locals in Go, but the concurrency model this
// mirrors already restricts mimicking values to a single goroutine at
// a time, so the epoch stack here is a package-level stack guarded by
// a mutex with a checked LIFO discipline, the pragmatic substitute for
// Rust's thread_local! stack.
package dag

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StateId identifies a State within an Epoch's arena.
type StateId int

// noStateId marks the absence of a state reference (the analogue of
// a null operand slot).
const noStateId StateId = -1

// Epoch owns a StateArena and a stack of assertion states recorded
// while it was the active (topmost) epoch.
type Epoch struct {
	Key        uuid.UUID
	Arena      *StateArena
	Assertions []StateId
	prev       *Epoch
}

var (
	epochMu    sync.Mutex
	epochStack []*Epoch
)

// PushEpoch opens a new epoch, making it the active epoch for any
// mimicking value construction that follows. Go exposes no public
// goroutine id, so the LIFO discipline below is enforced structurally
// (the popped epoch must be the topmost one) rather than by checking
// which goroutine is calling; callers are expected to push and pop
// from the same goroutine that uses the resulting mimicking values,
// matching this layer's single-goroutine-at-a-time concurrency model.
func PushEpoch() *Epoch {
	epochMu.Lock()
	defer epochMu.Unlock()
	e := &Epoch{
		Key:   uuid.New(),
		Arena: newStateArena(),
	}
	if len(epochStack) > 0 {
		e.prev = epochStack[len(epochStack)-1]
	}
	epochStack = append(epochStack, e)
	logrus.WithField("epoch", e.Key).Debug("dag: epoch pushed")
	return e
}

// PopEpoch closes e, which must be the currently active (topmost)
// epoch; panics on LIFO violation (closing an epoch that isn't on
// top of the stack).
func PopEpoch(e *Epoch) {
	epochMu.Lock()
	defer epochMu.Unlock()
	if len(epochStack) == 0 || epochStack[len(epochStack)-1] != e {
		panic("dag: epoch stack LIFO violation: popped epoch is not the active epoch")
	}
	epochStack = epochStack[:len(epochStack)-1]
	logrus.WithFields(logrus.Fields{
		"epoch":      e.Key,
		"num_states": e.Arena.Len(),
	}).Debug("dag: epoch popped")
}

// ActiveEpoch returns the currently active epoch, or nil if none is
// open. Mimicking-type constructors call this to find the arena a new
// state should be recorded into.
func ActiveEpoch() *Epoch {
	epochMu.Lock()
	defer epochMu.Unlock()
	if len(epochStack) == 0 {
		return nil
	}
	return epochStack[len(epochStack)-1]
}

// RegisterAssertion records id as an assertion bit checked by e.
func (e *Epoch) RegisterAssertion(id StateId) {
	e.Assertions = append(e.Assertions, id)
}
