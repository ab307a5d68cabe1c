package template

import "errors"

// Sentinel errors for template operations.
var (
	// ErrEmpty is returned when the template string is empty.
	ErrEmpty = errors.New("template is empty")

	// ErrParse is returned when the template fails to parse.
	ErrParse = errors.New("template parse error")

	// ErrExecute is returned when template execution fails.
	ErrExecute = errors.New("template execution error")

	// ErrVariable is returned when a required argument is missing.
	ErrVariable = errors.New("required argument missing")

	// ErrNotFound is returned when no search directory holds the template.
	ErrNotFound = errors.New("template not found")

	// ErrInvalidFile is returned for template files that cannot be used.
	ErrInvalidFile = errors.New("invalid template file")

	// ErrInvalidArgument is returned when an argument value does not match
	// its declared type.
	ErrInvalidArgument = errors.New("invalid argument value")
)
