package queryexec

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a query error category.
type ErrorCode string

const (
	// ErrCodeIDConflict: both id and ids were given.
	ErrCodeIDConflict ErrorCode = "E201"

	// ErrCodePathWithoutSeed: a path was given with no id, ids or seed to
	// start from.
	ErrCodePathWithoutSeed ErrorCode = "E202"

	// ErrCodePathSyntax: the path expression does not parse.
	ErrCodePathSyntax ErrorCode = "E203"

	// ErrCodeUnknownClass: the queried class is not in the frames.
	ErrCodeUnknownClass ErrorCode = "E204"

	// ErrCodeUnknownOrderField: an ordering names a field the class lacks.
	ErrCodeUnknownOrderField ErrorCode = "E205"

	// ErrCodeInvalidFilter: a hand-built filter failed queryir.Validate, or
	// names a restriction the executor does not know.
	ErrCodeInvalidFilter ErrorCode = "E206"
)

// QueryError is a malformed query, reported before any graph scan.
type QueryError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is or wraps a *QueryError with code.
func HasCode(err error, code ErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

func queryErrorf(code ErrorCode, format string, args ...any) *QueryError {
	return &QueryError{Code: code, Message: fmt.Sprintf(format, args...)}
}
