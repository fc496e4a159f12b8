package tables

import (
	"errors"
	"fmt"
)

// Validation kinds reported through ValidationError.
const (
	KindEmptyInput      = "empty_input"
	KindNoUniqueNames   = "no_unique_names"
	KindBlankName       = "blank_name"
	KindDuplicateName   = "duplicate_name"
	KindLengthMismatch  = "length_mismatch"
	KindNoTableSelected = "no_table_selected"
	KindEmptyRow        = "empty_row"
	KindUnknownColumn   = "unknown_column"
	KindIncompleteRow   = "incomplete_row"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrNoStore is returned by collaborators constructed without a store.
	// It is not recoverable.
	ErrNoStore = errors.New("table store is not initialized")
)

// ValidationError is a user-correctable rejection. The store is unchanged when
// an operation returns one.
type ValidationError struct {
	Kind    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Fault reports a broken contract on the caller's side, such as naming a table
// that does not exist or using a stale row index.
type Fault struct {
	Err     error
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Err, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func unknownTable(name string) *Fault {
	return &Fault{Err: ErrUnknownTable, Message: fmt.Sprintf("table %q does not exist", name)}
}

func rowOutOfRange(table string, index, count int) *Fault {
	return &Fault{
		Err:     ErrRowOutOfRange,
		Message: fmt.Sprintf("row %d of table %q (table has %d rows)", index, table, count),
	}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsFault reports whether err is a Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}
