package flatfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/avaskys/flatvol"
	"github.com/noxer/bytewriter"
)

// Superblock is the volume-level metadata stored at the start of block 0.
// The on-disk form is exactly these five little-endian 32-bit integers, in
// declaration order, zero-padded to a full block.
//
// TotalBlocks, BlockSize and TotalInodes are the volume identity and never
// change after formatting; mount validates an image against them.
// FreeBlocks and FreeInodes are cached in memory while the volume is
// mounted and flushed back to disk on unmount.
type Superblock struct {
	TotalBlocks int32
	BlockSize   int32
	FreeBlocks  int32
	TotalInodes int32
	FreeInodes  int32
}

// SuperblockSize is the size of the serialized superblock, in bytes.
const SuperblockSize = 20

// SerializeInto writes the superblock into `buffer`, which must hold at
// least SuperblockSize bytes.
func (sb *Superblock) SerializeInto(buffer []byte) error {
	writer := bytewriter.New(buffer)
	err := binary.Write(writer, binary.LittleEndian, sb)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	return nil
}

// DeserializeSuperblock decodes a superblock from the first SuperblockSize
// bytes of `data`.
func DeserializeSuperblock(data []byte) (Superblock, error) {
	var sb Superblock

	reader := bytes.NewReader(data)
	err := binary.Read(reader, binary.LittleEndian, &sb)
	if err != nil {
		return Superblock{}, flatvol.ErrInvalidFileSystem.Wrap(err)
	}
	return sb, nil
}

// Validate checks the identity fields against the compile-time geometry.
// Any mismatch means the image was not produced by this file system (or was
// corrupted) and must not be mounted.
func (sb *Superblock) Validate() error {
	if sb.TotalBlocks != TotalBlocks {
		return flatvol.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf("total block count is %d, expected %d", sb.TotalBlocks, TotalBlocks))
	}
	if sb.BlockSize != BytesPerBlock {
		return flatvol.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf("block size is %d, expected %d", sb.BlockSize, BytesPerBlock))
	}
	if sb.TotalInodes != MaxFiles {
		return flatvol.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf("inode table size is %d, expected %d", sb.TotalInodes, MaxFiles))
	}
	return nil
}
