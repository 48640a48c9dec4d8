package calltable

import (
	"errors"
	"fmt"
)

// ErrAlreadyBound is returned when a table is bound a second time.
var ErrAlreadyBound = errors.New("table already bound")

// BindingError reports a native call table that could not be bound.
type BindingError struct {
	Table string
	Want  int
	Got   int
	Err   error
}

func (e *BindingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bind %s table: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("bind %s table: want %d entries, got %d", e.Table, e.Want, e.Got)
}

func (e *BindingError) Unwrap() error { return e.Err }
