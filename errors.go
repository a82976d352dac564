package flatvol

import "fmt"

// DriverError is the error interface returned by all volume operations. It
// augments the plain error interface with combinators for attaching context
// while keeping the original sentinel visible to [errors.Is].
type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

// FlatvolError is a sentinel error value. The string is the user-facing
// message, phrased like the strerror() text of the closest errno.
type FlatvolError string

const ErrAlreadyInProgress = FlatvolError("Operation already in progress")
const ErrArgumentOutOfRange = FlatvolError("Numerical argument out of domain")
const ErrBusy = FlatvolError("Device or resource busy")
const ErrExists = FlatvolError("File exists")
const ErrFileSystemCorrupted = FlatvolError("Structure needs cleaning")
const ErrFileTooLarge = FlatvolError("File too large")
const ErrInvalidArgument = FlatvolError("Invalid argument")
const ErrInvalidFileSystem = FlatvolError("Wrong medium type")
const ErrIOFailed = FlatvolError("Input/output error")
const ErrNameTooLong = FlatvolError("File name too long")
const ErrNoSpaceOnDevice = FlatvolError("No space left on device")
const ErrNotFound = FlatvolError("No such file or directory")
const ErrNotMounted = FlatvolError("Volume not mounted")

func (e FlatvolError) Error() string {
	return string(e)
}

func (e FlatvolError) WithMessage(message string) DriverError {
	return customError{
		message:  fmt.Sprintf("%s: %s", e.Error(), message),
		sentinel: e,
		cause:    e,
	}
}

func (e FlatvolError) Wrap(err error) DriverError {
	return customError{
		message:  fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		sentinel: e,
		cause:    err,
	}
}

// -----------------------------------------------------------------------------

// customError is a sentinel with context attached. [errors.Is] matches it
// against both the sentinel and the wrapped cause.
type customError struct {
	message  string
	sentinel error
	cause    error
}

func (e customError) Error() string {
	return e.message
}

func (e customError) WithMessage(message string) DriverError {
	return customError{
		message:  fmt.Sprintf("%s: %s", e.message, message),
		sentinel: e.sentinel,
		cause:    e,
	}
}

func (e customError) Wrap(err error) DriverError {
	return customError{
		message:  fmt.Sprintf("%s: %s", e.message, err.Error()),
		sentinel: e.sentinel,
		cause:    err,
	}
}

func (e customError) Is(target error) bool {
	return target == e.sentinel
}

func (e customError) Unwrap() error {
	return e.cause
}
