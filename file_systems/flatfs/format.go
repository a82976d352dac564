package flatfs

import (
	"os"

	"github.com/avaskys/flatvol"
	c "github.com/avaskys/flatvol/file_systems/common"
	"github.com/boljen/go-bitmap"
	"github.com/noxer/bytewriter"
)

// FormatPath creates (or truncates) the file at `path` and writes a blank
// volume into it. The file is closed before returning; format does not
// leave the volume mounted.
func FormatPath(path string) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	return NewDriverFromStream(file).Format()
}

// Format writes a blank volume into the driver's backing image: all blocks
// zeroed, then the initial superblock, the allocation bitmap with the
// metadata blocks marked used, and an inode table of all-free slots.
func (driver *Driver) Format() error {
	if driver.isMounted {
		return flatvol.ErrBusy.WithMessage(
			"image must be unmounted before it can be formatted")
	}

	if truncator, ok := driver.image.(c.Truncator); ok {
		err := truncator.Truncate(0)
		if err != nil {
			return flatvol.ErrIOFailed.Wrap(err)
		}
	}

	// Zero every block first so the image comes out at its exact size with
	// no stale contents, then overwrite the metadata region.
	emptyBlock := make([]byte, BytesPerBlock)
	for block := 0; block < TotalBlocks; block++ {
		err := driver.writeBlock(c.PhysicalBlock(block), emptyBlock)
		if err != nil {
			return err
		}
	}

	superblock := Superblock{
		TotalBlocks: TotalBlocks,
		BlockSize:   BytesPerBlock,
		FreeBlocks:  TotalBlocks - MetadataBlocks,
		TotalInodes: MaxFiles,
		FreeInodes:  MaxFiles,
	}

	superblockBlock := make([]byte, BytesPerBlock)
	err := superblock.SerializeInto(superblockBlock)
	if err != nil {
		return err
	}
	err = driver.writeBlock(SuperblockStart, superblockBlock)
	if err != nil {
		return err
	}

	bm := bitmap.New(TotalBlocks)
	for block := 0; block < MetadataBlocks; block++ {
		bm.Set(block, true)
	}

	bitmapBlock := make([]byte, BytesPerBlock)
	writer := bytewriter.New(bitmapBlock)
	_, err = writer.Write(bm.Data(false))
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	err = driver.writeBlock(BitmapStart, bitmapBlock)
	if err != nil {
		return err
	}

	// A free slot is all zero bytes, so the packed table is one zeroed
	// extent.
	return driver.writeExtent(inodeSlotOffset(0), make([]byte, MaxFiles*InodeSlotSize))
}
