// Package errs defines the four fatal error kinds the kernel can raise, per
// the error taxonomy: invalid_input, out_of_capacity, logic_error, unsupported.
package errs

import "errors"

// Sentinel kinds. Wrap with fmt.Errorf("...: %w", ...) for a diagnostic.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrOutOfCapacity = errors.New("out of capacity")
	ErrLogicError    = errors.New("logic error")
	ErrUnsupported   = errors.New("unsupported")
)

// Is reports whether err is (wraps) one of the four sentinel kinds.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
