package querycompile

import (
	"errors"
	"fmt"
)

// CompileError is a malformed filter or ordering input. Field is the dotted
// path of the offending key, empty for the top level.
type CompileError struct {
	Field   string
	Message string
}

func (e *CompileError) Error() string {
	if e.Field == "" {
		return "Unable to compile filter: " + e.Message
	}
	return fmt.Sprintf("Unable to compile filter: %s: %s", e.Field, e.Message)
}

// IsCompileError reports whether err is or wraps a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

func errorf(field, format string, args ...any) *CompileError {
	return &CompileError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func join(at, key string) string {
	if at == "" {
		return key
	}
	return at + "." + key
}
