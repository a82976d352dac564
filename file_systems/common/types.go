// Package common contains definitions of fundamental types shared by the
// file system implementation and its test helpers.
package common

import "math"

// LogicalBlock is a block index within a single file, counted from the start
// of that file's block list.
type LogicalBlock uint

// PhysicalBlock is an absolute block index within the disk image.
type PhysicalBlock uint

const InvalidLogicalBlock = LogicalBlock(math.MaxUint)
const InvalidPhysicalBlock = PhysicalBlock(math.MaxUint)

// Truncator is an interface for objects that support a Truncate() method.
// This method must behave just like [os.File.Truncate].
type Truncator interface {
	Truncate(size int64) error
}
