// Package testing provides helpers shared by the test suites: in-memory
// disk images, formatted and mounted volumes, and random payloads.
package testing

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/avaskys/flatvol/file_systems/flatfs"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// CreateBlankImage returns a fixed-size, zero-filled in-memory stream the
// exact size of a volume image.
//
//   - Writes past the end of the buffer trigger an error; the image cannot
//     grow.
//   - The backing slice is returned alongside the stream so tests can
//     inspect raw image bytes.
func CreateBlankImage(t *testing.T) (io.ReadWriteSeeker, []byte) {
	t.Helper()

	backing := make([]byte, flatfs.TotalSizeBytes)
	return bytesextra.NewReadWriteSeeker(backing), backing
}

// CreateFormattedDriver formats a blank in-memory image and returns an
// unmounted driver over it.
func CreateFormattedDriver(t *testing.T) *flatfs.Driver {
	t.Helper()

	stream, _ := CreateBlankImage(t)
	driver := flatfs.NewDriverFromStream(stream)
	require.NoError(t, driver.Format(), "formatting the image failed")
	return driver
}

// MountFormattedDriver formats a blank in-memory image, mounts it, and
// registers an unmount for test cleanup.
func MountFormattedDriver(t *testing.T) *flatfs.Driver {
	t.Helper()

	driver := CreateFormattedDriver(t)
	require.NoError(t, driver.Mount(), "mounting failed")
	t.Cleanup(func() { driver.Unmount() })
	return driver
}

// RandomPayload returns `size` bytes of random data. It is guaranteed to
// either return a valid slice or fail the test and abort.
func RandomPayload(t *testing.T, size int) []byte {
	t.Helper()

	payload := make([]byte, size)
	_, err := rand.Read(payload)
	require.NoErrorf(t, err, "failed to generate %d random bytes", size)
	return payload
}
