// Package flatfs implements a single-volume file store over a fixed-size
// 10 MiB disk image. The namespace is flat: named byte streams, no
// directories, no permissions, no timestamps. Block 0 holds the
// superblock, block 1 the allocation bitmap, blocks 2-9 the inode table,
// and everything from block 10 up is file data addressed through each
// inode's direct block pointers.
package flatfs

import (
	"io"
	"os"

	"github.com/avaskys/flatvol"
	"github.com/hashicorp/go-multierror"
)

// Driver owns one backing image and, while mounted, the cached superblock.
// A driver is mounted by at most one caller at a time; it performs no
// locking of its own. The external surface in the driver package serializes
// access.
type Driver struct {
	// image is the backing disk image. Path-based constructors hand in an
	// *os.File; tests hand in in-memory streams.
	image      io.ReadWriteSeeker
	superblock Superblock
	isMounted  bool
	// ownsImage is set when the driver opened the backing file itself, in
	// which case unmounting closes it. Streams handed in by the caller are
	// the caller's to close.
	ownsImage bool
}

// NewDriverFromStream returns an unmounted driver over an arbitrary
// stream. The stream must be exactly TotalSizeBytes long once formatted.
func NewDriverFromStream(stream io.ReadWriteSeeker) *Driver {
	return &Driver{image: stream}
}

// MountPath opens the image file at `path` read-write and mounts it. On
// any failure the file is closed and nothing is retained.
func MountPath(path string) (*Driver, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, flatvol.ErrNotFound.Wrap(err)
	}

	driver := NewDriverFromStream(file)
	driver.ownsImage = true
	err = driver.Mount()
	if err != nil {
		file.Close()
		return nil, err
	}
	return driver, nil
}

// Mount validates the image and caches its superblock. Mounting an
// already-mounted driver fails; the caller must unmount first.
func (driver *Driver) Mount() error {
	if driver.isMounted {
		return flatvol.ErrAlreadyInProgress
	}

	// A short read here means the image isn't a flatfs volume at all, not
	// that the device hiccuped.
	raw := make([]byte, SuperblockSize)
	err := driver.readExtent(0, raw)
	if err != nil {
		return flatvol.ErrInvalidFileSystem.Wrap(err)
	}

	superblock, err := DeserializeSuperblock(raw)
	if err != nil {
		return err
	}

	err = superblock.Validate()
	if err != nil {
		return err
	}

	driver.superblock = superblock
	driver.isMounted = true
	return nil
}

// Unmount flushes the cached superblock back to block 0 and closes the
// image if the driver opened it itself; streams handed in by the caller
// are left open. Unmounting an unmounted driver is a no-op.
// The driver always ends up unmounted, even when the flush fails; both the
// flush and close errors are reported if both occur.
func (driver *Driver) Unmount() error {
	if !driver.isMounted {
		return nil
	}

	var result *multierror.Error

	buffer := make([]byte, SuperblockSize)
	err := driver.superblock.SerializeInto(buffer)
	if err == nil {
		err = driver.writeExtent(0, buffer)
	}
	if err != nil {
		result = multierror.Append(result, err)
	}

	if closer, ok := driver.image.(io.Closer); ok && driver.ownsImage {
		err = closer.Close()
		if err != nil {
			result = multierror.Append(result, flatvol.ErrIOFailed.Wrap(err))
		}
	}

	driver.isMounted = false
	driver.superblock = Superblock{}
	return result.ErrorOrNil()
}

// FSStat returns statistics for the mounted volume, sourced from the
// cached superblock.
func (driver *Driver) FSStat() flatvol.FSStat {
	return flatvol.FSStat{
		BlockSize:       BytesPerBlock,
		TotalBlocks:     TotalBlocks,
		BlocksFree:      uint64(driver.superblock.FreeBlocks),
		BlocksAvailable: uint64(driver.superblock.FreeBlocks),
		Files:           uint64(driver.superblock.TotalInodes - driver.superblock.FreeInodes),
		FilesFree:       uint64(driver.superblock.FreeInodes),
		MaxNameLength:   MaxFilenameLength - 1,
	}
}

// IsMounted reports whether the driver currently has a validated volume.
func (driver *Driver) IsMounted() bool {
	return driver.isMounted
}
