package flatfs

import (
	"github.com/avaskys/flatvol"
	c "github.com/avaskys/flatvol/file_systems/common"
	"github.com/boljen/go-bitmap"
)

// The block allocation bitmap lives in block 1: one bit per block, bit k in
// byte k/8 at position k%8, LSB first, set meaning "used". That is exactly
// the layout go-bitmap uses, so the raw block buffer doubles as the bitmap
// with no translation step.
//
// The bitmap is never cached across operations. Every allocation change is
// a full read-modify-write of the bitmap block, so on-disk bitmap state
// always reflects the inode writes that preceded it.

// readAllocationBitmap reads the bitmap block. The returned bitmap is one
// full block long; only the first TotalBlocks bits are meaningful.
func (driver *Driver) readAllocationBitmap() (bitmap.Bitmap, error) {
	buffer := make([]byte, BytesPerBlock)
	err := driver.readBlock(BitmapStart, buffer)
	if err != nil {
		return nil, err
	}
	return bitmap.Bitmap(buffer), nil
}

// writeAllocationBitmap writes the bitmap block back out.
func (driver *Driver) writeAllocationBitmap(bm bitmap.Bitmap) error {
	return driver.writeBlock(BitmapStart, []byte(bm))
}

// findFreeBlock returns the smallest free data block. The search is
// strictly ascending from the first block past the metadata region; this
// lowest-index-first determinism is part of the on-disk contract.
func (driver *Driver) findFreeBlock() (c.PhysicalBlock, error) {
	bm, err := driver.readAllocationBitmap()
	if err != nil {
		return c.InvalidPhysicalBlock, err
	}

	for i := MetadataBlocks; i < TotalBlocks; i++ {
		if !bm.Get(i) {
			return c.PhysicalBlock(i), nil
		}
	}
	return c.InvalidPhysicalBlock, flatvol.ErrNoSpaceOnDevice
}

// markBlockUsed sets the bitmap bit for `block`. Out-of-range indices are
// ignored without touching the image; callers are trusted to have
// validated any pointer that came off the disk. The update is idempotent.
func (driver *Driver) markBlockUsed(block c.PhysicalBlock) error {
	return driver.setBlockState(block, true)
}

// markBlockFree clears the bitmap bit for `block`. Same rules as
// markBlockUsed.
func (driver *Driver) markBlockFree(block c.PhysicalBlock) error {
	return driver.setBlockState(block, false)
}

func (driver *Driver) setBlockState(block c.PhysicalBlock, used bool) error {
	if block >= TotalBlocks {
		return nil
	}

	bm, err := driver.readAllocationBitmap()
	if err != nil {
		return err
	}

	bm.Set(int(block), used)
	return driver.writeAllocationBitmap(bm)
}
