package allocator

import "github.com/pkg/errors"

// Sentinel error kinds callers can tell apart with errors.Is (§7's error
// taxonomy): capacity exceeded, unknown id, and a consistency
// violation that indicates a bug in an operator rather than bad input.
var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNoSuchKey        = errors.New("no such key")
	ErrConsistency      = errors.New("consistency violation")
)

func allocError(base error, format string, args ...interface{}) error {
	return errors.Wrapf(base, format, args...)
}
