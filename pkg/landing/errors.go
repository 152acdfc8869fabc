package landing

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedTableError is returned when a reference table fails structural or
// type validation while it is being built. It is fatal for the session: no
// stage runs against a table set that failed to load.
type MalformedTableError struct {
	Table  string // Table name (e.g. "weight adjustment")
	Reason string // What was wrong
	Row    int    // 1-based data row, 0 when the header is at fault
	Column string // Offending header token or column, if known
}

func (e *MalformedTableError) Error() string {
	msg := fmt.Sprintf("malformed table %q: %s", e.Table, e.Reason)
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" (row %d)", e.Row)
	}
	return msg
}

// TableAxisEmptyError reports a floor lookup against an axis with no keys.
type TableAxisEmptyError struct {
	Table string
	Axis  string
}

func (e *TableAxisEmptyError) Error() string {
	if e.Table == "" {
		return "floor lookup on empty key axis"
	}
	return fmt.Sprintf("table %q: %s axis is empty", e.Table, e.Axis)
}

// UnknownColumnError is returned when a user-selected value (a landing weight
// or a wind speed) has no matching column in the table. Selections are never
// rounded to a neighbouring column.
type UnknownColumnError struct {
	Table  string
	Column float64
	Unit   string
}

func (e *UnknownColumnError) Error() string {
	return strings.TrimSpace(fmt.Sprintf("table %q has no column for %s %s",
		e.Table, strconv.FormatFloat(e.Column, 'f', -1, 64), e.Unit))
}

// InputRangeError is returned by Input.Validate for a parameter outside its
// closed range.
type InputRangeError struct {
	Param string
	Value float64
	Range Range
}

func (e *InputRangeError) Error() string {
	return fmt.Sprintf("%s %s %s outside allowed range [%s, %s]",
		e.Param,
		strconv.FormatFloat(e.Value, 'f', -1, 64), e.Range.Unit,
		strconv.FormatFloat(e.Range.Min, 'f', -1, 64),
		strconv.FormatFloat(e.Range.Max, 'f', -1, 64))
}

// StageError wraps the failure of one pipeline stage. The pipeline halts at
// the failing stage and reports no partial trace.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
