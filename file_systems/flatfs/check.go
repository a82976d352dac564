package flatfs

import (
	"fmt"

	"github.com/avaskys/flatvol"
	"github.com/hashicorp/go-multierror"
)

// Check sweeps the on-disk structures of a mounted volume and verifies
// that they agree with each other and with the cached superblock counters.
// Every violation found is reported, not just the first; a clean volume
// returns nil.
//
// Checked:
//   - the metadata blocks are marked used in the bitmap
//   - the superblock free-block count matches the bitmap
//   - the superblock free-inode count matches the inode table
//   - every block pointer of a used inode is a data block with its bitmap
//     bit set, and no block is claimed by two inodes
//   - each used inode has exactly as many leading pointers as its size
//     requires, with zeroed trailing entries
func (driver *Driver) Check() error {
	if !driver.isMounted {
		return flatvol.ErrNotMounted
	}

	bm, err := driver.readAllocationBitmap()
	if err != nil {
		return err
	}
	table, err := driver.readInodeTable()
	if err != nil {
		return err
	}

	var result *multierror.Error

	for block := 0; block < MetadataBlocks; block++ {
		if !bm.Get(block) {
			result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("metadata block %d is not marked used", block)))
		}
	}

	freeBlocks := 0
	for block := MetadataBlocks; block < TotalBlocks; block++ {
		if !bm.Get(block) {
			freeBlocks++
		}
	}
	if freeBlocks != int(driver.superblock.FreeBlocks) {
		result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("superblock says %d free blocks, bitmap says %d",
				driver.superblock.FreeBlocks, freeBlocks)))
	}

	usedInodes := 0
	owners := make(map[int32]string)

	for i := range table {
		inode := &table[i]
		if !inode.IsAllocated() {
			continue
		}
		usedInodes++
		name := inode.FileName()

		held := inode.BlockCount()
		for j := 0; j < MaxDirectBlocks; j++ {
			block := inode.Blocks[j]

			if j >= held {
				if block != 0 {
					result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
						fmt.Sprintf("%q holds %d blocks but pointer %d is %d",
							name, held, j, block)))
				}
				continue
			}

			if block < MetadataBlocks || block >= TotalBlocks {
				result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
					fmt.Sprintf("%q references block %d, outside the data region",
						name, block)))
				continue
			}
			if !bm.Get(int(block)) {
				result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
					fmt.Sprintf("%q references block %d, which the bitmap says is free",
						name, block)))
			}
			if other, claimed := owners[block]; claimed {
				result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
					fmt.Sprintf("block %d is claimed by both %q and %q",
						block, other, name)))
			} else {
				owners[block] = name
			}
		}
	}

	if MaxFiles-usedInodes != int(driver.superblock.FreeInodes) {
		result = multierror.Append(result, flatvol.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("superblock says %d free inodes, table says %d",
				driver.superblock.FreeInodes, MaxFiles-usedInodes)))
	}

	return result.ErrorOrNil()
}
