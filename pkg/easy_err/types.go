// pkg/easy_err/types.go

package easy_err

import "errors"

// ErrUnsupportedOS is the one startup condition that is fatal to the process.
var ErrUnsupportedOS = errors.New("tes3mp-easy only supports Linux")

// UserError marks an error as expected and recoverable by the user:
// a missing config on first run, a rejected path, an absent external
// program. These are surfaced as plain messages, never stack traces.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}
