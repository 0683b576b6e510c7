package dataset

import (
	"errors"
	"fmt"
)

// ErrNoRows is returned when the input holds no data rows.
var ErrNoRows = errors.New("dataset: no data rows")

// ErrRowWidth is returned when a row has a different number of selected
// columns than the first data row.
type ErrRowWidth struct {
	Line     int
	Expected int
	Actual   int
}

func (e *ErrRowWidth) Error() string {
	return fmt.Sprintf("dataset: line %d: expected %d columns, got %d", e.Line, e.Expected, e.Actual)
}

// ErrParse is returned when a cell is neither a number nor a missing token.
type ErrParse struct {
	Line   int
	Column int
	Value  string
	Err    error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("dataset: line %d, column %d: cannot parse %q", e.Line, e.Column, e.Value)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// ErrColumnRange is returned when WithColumns selects an empty range.
type ErrColumnRange struct {
	First int
	Last  int
}

func (e *ErrColumnRange) Error() string {
	return fmt.Sprintf("dataset: invalid column range [%d, %d)", e.First, e.Last)
}
