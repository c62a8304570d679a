// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrDuplicateName is returned when a function name is already
	// registered on the connection.
	ErrDuplicateName = errors.New("vtfunc: duplicate function name")

	// ErrInvalidDescriptor is returned when a Descriptor cannot be
	// registered: bad identifiers, missing columns, or a nil factory.
	ErrInvalidDescriptor = errors.New("vtfunc: invalid descriptor")

	// ErrConfiguration reports a mismatch between the declared shape of a
	// function and the values it was given or produced.
	ErrConfiguration = errors.New("vtfunc: configuration error")

	// ErrOpen classifies failures while building or initializing a producer.
	ErrOpen = errors.New("vtfunc: open failed")

	// ErrProduce classifies failures while producing a row.
	ErrProduce = errors.New("vtfunc: produce failed")

	// ErrNotRegistered is returned by Unregister for unknown names.
	ErrNotRegistered = errors.New("vtfunc: function not registered")
)

// Op names the producer call that failed.
type Op string

const (
	OpConstruct  Op = "construct"
	OpInitialize Op = "initialize"
	OpProduce    Op = "produce"
)

// Error is the single error type raised across the SQLite boundary for any
// failure in producer code. Once a cursor is broken every further pull
// returns the same *Error.
type Error struct {
	Func string
	Op   Op
	Row  int64 // row index of a failed produce call
	Err  error
}

func (e *Error) Error() string {
	if e.Op == OpProduce {
		return fmt.Sprintf("%s: %s row %d: %v", e.Func, e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Func, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is classifies the error as ErrOpen or ErrProduce by the failing call.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrOpen:
		return e.Op == OpConstruct || e.Op == OpInitialize
	case ErrProduce:
		return e.Op == OpProduce
	}
	return false
}

// PanicError carries a value recovered from a panic in producer code.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

// guard runs fn, converting a panic into an error so that producer failures
// never unwind through the driver's callback frames.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
