package core

import "errors"

// Failure classes of the visualizer. Constructors and the frame loop wrap
// these with context via fmt.Errorf and %w so callers can classify with
// errors.Is at the process boundary.
var (
	ErrInit       = errors.New("initialization failed")
	ErrValidation = errors.New("invalid configuration")
	ErrRuntime    = errors.New("runtime failure")
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitRuntime    = 1
	ExitInit       = 2
	ExitValidation = 3
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidation):
		return ExitValidation
	case errors.Is(err, ErrInit):
		return ExitInit
	default:
		return ExitRuntime
	}
}
