package flatfs

import (
	"fmt"
	"io"

	"github.com/avaskys/flatvol"
	c "github.com/avaskys/flatvol/file_systems/common"
)

// BLOCK-LEVEL ACCESS ==========================================================
//
// Every access to the backing image is positioned: seek to the byte offset
// computed from the block index, then read or write. There is no buffering
// layer above the OS; block and bitmap transfers must move exactly one full
// block or they fail.

// seekToBlock sets the stream pointer to the first byte of the given block.
func (driver *Driver) seekToBlock(block c.PhysicalBlock) error {
	if block >= TotalBlocks {
		return flatvol.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"invalid block number: %d not in range [0, %d)",
				block,
				TotalBlocks,
			),
		)
	}

	_, err := driver.image.Seek(int64(block)*BytesPerBlock, io.SeekStart)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	return nil
}

// readBlock fills `buffer` with the contents of one block. `buffer` must be
// exactly one block long; a short read is an I/O error, never a partial
// result.
func (driver *Driver) readBlock(block c.PhysicalBlock, buffer []byte) error {
	if len(buffer) != BytesPerBlock {
		return flatvol.ErrIOFailed.WithMessage(
			fmt.Sprintf("block buffer must be %d bytes, got %d", BytesPerBlock, len(buffer)))
	}

	err := driver.seekToBlock(block)
	if err != nil {
		return err
	}

	n, err := io.ReadFull(driver.image, buffer)
	if err != nil {
		return flatvol.ErrIOFailed.WithMessage(
			fmt.Sprintf("read of block %d failed: expected %dB, got %d",
				block, BytesPerBlock, n))
	}
	return nil
}

// writeBlock writes one full block. `data` must be exactly one block long.
func (driver *Driver) writeBlock(block c.PhysicalBlock, data []byte) error {
	if len(data) != BytesPerBlock {
		return flatvol.ErrIOFailed.WithMessage(
			fmt.Sprintf("block buffer must be %d bytes, got %d", BytesPerBlock, len(data)))
	}

	err := driver.seekToBlock(block)
	if err != nil {
		return err
	}

	n, err := driver.image.Write(data)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	if n != BytesPerBlock {
		return flatvol.ErrIOFailed.WithMessage(
			fmt.Sprintf("write of block %d failed: expected %dB, wrote %d",
				block, BytesPerBlock, n))
	}
	return nil
}

// BYTE-EXTENT ACCESS ==========================================================
//
// Inode slots and the superblock are smaller than a block and are accessed
// at their exact byte offsets. Extent transfers are still all-or-nothing.

func (driver *Driver) readExtent(offset int64, buffer []byte) error {
	_, err := driver.image.Seek(offset, io.SeekStart)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}

	n, err := io.ReadFull(driver.image, buffer)
	if err != nil {
		return flatvol.ErrIOFailed.WithMessage(
			fmt.Sprintf("read at offset %d failed: expected %dB, got %d",
				offset, len(buffer), n))
	}
	return nil
}

func (driver *Driver) writeExtent(offset int64, data []byte) error {
	_, err := driver.image.Seek(offset, io.SeekStart)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}

	n, err := driver.image.Write(data)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	if n != len(data) {
		return flatvol.ErrIOFailed.WithMessage(
			fmt.Sprintf("write at offset %d failed: expected %dB, wrote %d",
				offset, len(data), n))
	}
	return nil
}
