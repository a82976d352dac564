// Package driver exposes the file store through the integer status codes
// of its original external surface. Each operation maps the typed errors
// of the flatfs core onto per-operation codes; the same code can mean
// different things on different operations, and those mappings are part of
// the contract.
package driver

import (
	"errors"
	"sync"

	"github.com/avaskys/flatvol"
	"github.com/avaskys/flatvol/file_systems/flatfs"
)

// FileStore is a process-wide handle to at most one mounted volume. The
// core is single-threaded by contract; the one mutex here makes that
// restriction defensive rather than assumed.
type FileStore struct {
	mu  sync.Mutex
	vol *flatfs.Driver
}

func New() *FileStore {
	return &FileStore{}
}

// Format creates or wipes the image at `path`. Returns CodeOK, or
// CodeNotFound on any failure. Formatting does not mount the volume and is
// refused while one is mounted.
func (store *FileStore) Format(path string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol != nil {
		return flatvol.CodeNotFound
	}
	if flatfs.FormatPath(path) != nil {
		return flatvol.CodeNotFound
	}
	return flatvol.CodeOK
}

// Mount opens and validates the image at `path`. Returns CodeOK, or
// CodeNotFound when already mounted, the image cannot be opened, or it is
// not a valid volume.
func (store *FileStore) Mount(path string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol != nil {
		return flatvol.CodeNotFound
	}

	vol, err := flatfs.MountPath(path)
	if err != nil {
		return flatvol.CodeNotFound
	}
	store.vol = vol
	return flatvol.CodeOK
}

// Unmount flushes the superblock and closes the image. A no-op when
// nothing is mounted.
func (store *FileStore) Unmount() {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol == nil {
		return
	}
	store.vol.Unmount()
	store.vol = nil
}

// Create makes an empty file. Codes: CodeOK; CodeExists for a duplicate
// name; CodeNoSpace when the inode table is full; CodeInvalidArgument for
// an unmounted store or a bad name.
func (store *FileStore) Create(name string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol == nil {
		return flatvol.CodeInvalidArgument
	}

	err := store.vol.Create(name)
	switch {
	case err == nil:
		return flatvol.CodeOK
	case errors.Is(err, flatvol.ErrExists):
		return flatvol.CodeExists
	case errors.Is(err, flatvol.ErrNoSpaceOnDevice):
		return flatvol.CodeNoSpace
	default:
		return flatvol.CodeInvalidArgument
	}
}

// List fills `names` with file names in inode-table order and returns the
// count produced, or CodeNotFound when nothing is mounted or the table
// cannot be read.
func (store *FileStore) List(names []string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol == nil {
		return flatvol.CodeNotFound
	}

	found, err := store.vol.ListFiles(len(names))
	if err != nil {
		return flatvol.CodeNotFound
	}
	copy(names, found)
	return len(found)
}

// Write replaces the content of `name` with `data`. Codes: CodeOK;
// CodeNotFound for a missing file; CodeNoSpace when the payload exceeds
// the file size limit or the volume lacks blocks; CodeInvalidArgument for
// an unmounted store, a bad name, or empty data.
func (store *FileStore) Write(name string, data []byte) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol == nil {
		return flatvol.CodeInvalidArgument
	}

	err := store.vol.WriteFile(name, data)
	switch {
	case err == nil:
		return flatvol.CodeOK
	case errors.Is(err, flatvol.ErrNotFound):
		return flatvol.CodeNotFound
	case errors.Is(err, flatvol.ErrFileTooLarge), errors.Is(err, flatvol.ErrNoSpaceOnDevice):
		return flatvol.CodeNoSpace
	default:
		return flatvol.CodeInvalidArgument
	}
}

// Read copies up to len(buffer) bytes of the file into `buffer` and
// returns the byte count. Codes: CodeNotFound for an unmounted store or a
// missing file; CodeInvalidArgument for a bad name, an empty buffer, or a
// consistency violation encountered while reading.
func (store *FileStore) Read(name string, buffer []byte) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol == nil {
		return flatvol.CodeNotFound
	}

	n, err := store.vol.ReadFile(name, buffer)
	switch {
	case err == nil:
		return n
	case errors.Is(err, flatvol.ErrNotFound):
		return flatvol.CodeNotFound
	default:
		return flatvol.CodeInvalidArgument
	}
}

// Delete removes a file and releases its blocks. Codes: CodeOK;
// CodeNotFound for a missing file; CodeNoSpace for an unmounted store or a
// bad name.
func (store *FileStore) Delete(name string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.vol == nil {
		return flatvol.CodeNoSpace
	}

	err := store.vol.DeleteFile(name)
	switch {
	case err == nil:
		return flatvol.CodeOK
	case errors.Is(err, flatvol.ErrNotFound):
		return flatvol.CodeNotFound
	default:
		return flatvol.CodeNoSpace
	}
}
