package flatvol_test

import (
	"errors"
	"testing"

	"github.com/avaskys/flatvol"
	"github.com/stretchr/testify/assert"
)

func TestErrorWithMessage(t *testing.T) {
	newErr := flatvol.ErrNoSpaceOnDevice.WithMessage("asdfqwerty")
	assert.Equal(
		t,
		"No space left on device: asdfqwerty",
		newErr.Error(),
		"error message is wrong")
	assert.ErrorIs(t, newErr, flatvol.ErrNoSpaceOnDevice)
}

func TestErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := flatvol.ErrExists.Wrap(originalErr)
	expectedMessage := "File exists: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, flatvol.ErrExists, "sentinel not set as parent")
}

func TestErrorWithMessageChained(t *testing.T) {
	newErr := flatvol.ErrIOFailed.WithMessage("first").WithMessage("second")
	assert.Equal(
		t, "Input/output error: first: second", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, flatvol.ErrIOFailed)
}
