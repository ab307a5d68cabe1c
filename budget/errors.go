package budget

import (
	"errors"
	"fmt"
)

// Sentinel errors for context enforcement. None of them are worth retrying:
// running the same computation again gives the same result.
var (
	// ErrTokenizer is returned when the tokenizer rejects a prompt or argument.
	ErrTokenizer = errors.New("tokenizer failed")

	// ErrContextLimit is returned when reserving output leaves no room for input.
	ErrContextLimit = errors.New("context limit too small")

	// ErrRender is returned when rendering the trimmed arguments fails.
	ErrRender = errors.New("render after trimming failed")

	// ErrInvalidOptions is returned by ContextOptions.Validate.
	ErrInvalidOptions = errors.New("invalid context options")
)

// LimitError reports a context window that is used up by reserved output.
type LimitError struct {
	ContextSize   int
	ReserveOutput int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%v: reserving %d output tokens leaves no room for input in a context of %d tokens; lower reserve_output or raise limit",
		ErrContextLimit, e.ReserveOutput, e.ContextSize)
}

// Unwrap lets errors.Is match ErrContextLimit.
func (e *LimitError) Unwrap() error {
	return ErrContextLimit
}
