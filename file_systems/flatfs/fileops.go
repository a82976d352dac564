package flatfs

import (
	"fmt"

	"github.com/avaskys/flatvol"
	c "github.com/avaskys/flatvol/file_systems/common"
)

// validateFileName rejects names that cannot be stored: the empty string,
// and anything that would not leave room for the NUL terminator in the
// on-disk name field.
func validateFileName(name string) error {
	if name == "" {
		return flatvol.ErrInvalidArgument.WithMessage("file name is empty")
	}
	if len(name) > MaxFilenameLength-1 {
		return flatvol.ErrNameTooLong.WithMessage(
			fmt.Sprintf("%q is %d bytes, limit is %d", name, len(name), MaxFilenameLength-1))
	}
	return nil
}

// Create allocates an inode slot for `name` with no content. The name must
// be unique on the volume.
func (driver *Driver) Create(name string) error {
	if !driver.isMounted {
		return flatvol.ErrNotMounted
	}
	err := validateFileName(name)
	if err != nil {
		return err
	}

	_, _, err = driver.findInodeByName(name)
	if err == nil {
		return flatvol.ErrExists.WithMessage(name)
	}

	index, err := driver.findFreeInodeSlot()
	if err != nil {
		return err
	}

	inode := Inode{Used: 1}
	inode.SetFileName(name)

	err = driver.writeInodeSlot(index, &inode)
	if err != nil {
		return err
	}

	driver.superblock.FreeInodes--
	return nil
}

// ListFiles returns the names of up to `max` files, in inode-table order.
// That order is allocation order, modulo slots recycled by deletions.
func (driver *Driver) ListFiles(max int) ([]string, error) {
	if !driver.isMounted {
		return nil, flatvol.ErrNotMounted
	}

	table, err := driver.readInodeTable()
	if err != nil {
		return nil, err
	}

	names := []string{}
	for i := range table {
		if len(names) >= max {
			break
		}
		if table[i].IsAllocated() {
			names = append(names, table[i].FileName())
		}
	}
	return names, nil
}

// WriteFile replaces the entire content of `name` with `data`. A
// successful write leaves the file holding exactly `data`, regardless of
// its prior state; there is no append or partial update.
func (driver *Driver) WriteFile(name string, data []byte) error {
	if !driver.isMounted {
		return flatvol.ErrNotMounted
	}
	err := validateFileName(name)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return flatvol.ErrInvalidArgument.WithMessage("no data to write")
	}
	if len(data) > MaxFileSize {
		return flatvol.ErrFileTooLarge.WithMessage(
			fmt.Sprintf("%d bytes exceeds the %d-byte file limit", len(data), MaxFileSize))
	}

	index, inode, err := driver.findInodeByName(name)
	if err != nil {
		return err
	}

	blocksNeeded := blocksForSize(len(data))
	blocksHeld := inode.BlockCount()
	freeBlocks := int(driver.superblock.FreeBlocks)

	// The file's own blocks come back to the pool during the rewrite, so
	// they count toward what is available.
	if blocksNeeded > freeBlocks+blocksHeld {
		return flatvol.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf("need %d blocks, %d free", blocksNeeded, freeBlocks+blocksHeld))
	}

	if blocksNeeded <= freeBlocks {
		return driver.rewriteAllocateFirst(index, &inode, data, blocksNeeded)
	}
	return driver.rewriteReleaseFirst(index, &inode, data, blocksNeeded)
}

// rewriteAllocateFirst writes `data` into freshly allocated blocks before
// releasing the file's old ones. If allocating, writing the data or
// persisting the inode fails, the new blocks are returned to the pool and
// the file is untouched. A failure while freeing the old blocks is
// reported after the file already holds the new content.
func (driver *Driver) rewriteAllocateFirst(
	index int,
	inode *Inode,
	data []byte,
	blocksNeeded int,
) error {
	newBlocks, err := driver.allocateAndWrite(data, blocksNeeded)
	if err != nil {
		return err
	}

	// Point the inode at the new content, then give back the old blocks.
	oldBlocks := inode.Blocks
	oldCount := inode.BlockCount()

	inode.Size = int32(len(data))
	inode.Blocks = [MaxDirectBlocks]int32{}
	for i, block := range newBlocks {
		inode.Blocks[i] = int32(block)
	}

	err = driver.writeInodeSlot(index, inode)
	if err != nil {
		driver.releaseBlocks(newBlocks)
		return err
	}

	for i := 0; i < oldCount; i++ {
		if oldBlocks[i] == 0 {
			continue
		}
		err = driver.markBlockFree(c.PhysicalBlock(oldBlocks[i]))
		if err != nil {
			return err
		}
		driver.superblock.FreeBlocks++
	}
	return nil
}

// rewriteReleaseFirst is the fallback when the rewrite can only fit by
// reclaiming the file's own blocks: release everything the file holds,
// then allocate and write. A failure after the release leaves the file
// empty rather than referencing freed blocks.
func (driver *Driver) rewriteReleaseFirst(
	index int,
	inode *Inode,
	data []byte,
	blocksNeeded int,
) error {
	for i := 0; i < MaxDirectBlocks; i++ {
		if inode.Blocks[i] == 0 {
			continue
		}
		err := driver.markBlockFree(c.PhysicalBlock(inode.Blocks[i]))
		if err != nil {
			return err
		}
		driver.superblock.FreeBlocks++
		inode.Blocks[i] = 0
	}

	inode.Size = 0
	err := driver.writeInodeSlot(index, inode)
	if err != nil {
		return err
	}

	newBlocks, err := driver.allocateAndWrite(data, blocksNeeded)
	if err != nil {
		return err
	}

	inode.Size = int32(len(data))
	for i, block := range newBlocks {
		inode.Blocks[i] = int32(block)
	}
	err = driver.writeInodeSlot(index, inode)
	if err != nil {
		driver.releaseBlocks(newBlocks)
		return err
	}
	return nil
}

// allocateAndWrite takes `blocksNeeded` fresh blocks in ascending order and
// writes `data` into them block by block, zero-padding the tail of the
// final block. On any failure the blocks taken so far are released and the
// superblock count restored.
func (driver *Driver) allocateAndWrite(
	data []byte,
	blocksNeeded int,
) ([]c.PhysicalBlock, error) {
	blocks := make([]c.PhysicalBlock, 0, blocksNeeded)

	rollback := func(cause error) error {
		driver.releaseBlocks(blocks)
		return cause
	}

	for i := 0; i < blocksNeeded; i++ {
		block, err := driver.findFreeBlock()
		if err != nil {
			return nil, rollback(err)
		}
		err = driver.markBlockUsed(block)
		if err != nil {
			return nil, rollback(err)
		}
		driver.superblock.FreeBlocks--
		blocks = append(blocks, block)
	}

	buffer := make([]byte, BytesPerBlock)
	for i, block := range blocks {
		chunk := data[i*BytesPerBlock:]
		if len(chunk) > BytesPerBlock {
			chunk = chunk[:BytesPerBlock]
		}

		// The final block is padded with zeroes past the payload.
		copy(buffer, chunk)
		for j := len(chunk); j < BytesPerBlock; j++ {
			buffer[j] = 0
		}

		err := driver.writeBlock(block, buffer)
		if err != nil {
			return nil, rollback(err)
		}
	}
	return blocks, nil
}

// releaseBlocks returns blocks to the pool, best effort. It is only used
// on failure paths that already have an error to report.
func (driver *Driver) releaseBlocks(blocks []c.PhysicalBlock) {
	for _, block := range blocks {
		if driver.markBlockFree(block) == nil {
			driver.superblock.FreeBlocks++
		}
	}
}

// ReadFile copies up to len(buffer) bytes of the file's content into
// `buffer` and returns the number of bytes copied: the file size when the
// buffer is large enough, the buffer size otherwise. Bytes past the file's
// exact size are never exposed.
func (driver *Driver) ReadFile(name string, buffer []byte) (int, error) {
	if !driver.isMounted {
		return 0, flatvol.ErrNotMounted
	}
	err := validateFileName(name)
	if err != nil {
		return 0, err
	}
	if len(buffer) == 0 {
		return 0, flatvol.ErrInvalidArgument.WithMessage("no buffer to read into")
	}

	_, inode, err := driver.findInodeByName(name)
	if err != nil {
		return 0, err
	}

	effective := len(buffer)
	if int(inode.Size) < effective {
		effective = int(inode.Size)
	}
	if effective == 0 {
		return 0, nil
	}

	blockBuffer := make([]byte, BytesPerBlock)
	copied := 0
	for i := 0; i < blocksForSize(effective); i++ {
		block := inode.Blocks[i]
		if block < MetadataBlocks || block >= TotalBlocks {
			return 0, flatvol.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("inode for %q references block %d", name, block))
		}

		err = driver.readBlock(c.PhysicalBlock(block), blockBuffer)
		if err != nil {
			return 0, err
		}

		chunk := effective - copied
		if chunk > BytesPerBlock {
			chunk = BytesPerBlock
		}
		copy(buffer[copied:], blockBuffer[:chunk])
		copied += chunk
	}
	return copied, nil
}

// DeleteFile releases the file's blocks and frees its inode slot. The
// recycled slot is indistinguishable from one that was never used.
func (driver *Driver) DeleteFile(name string) error {
	if !driver.isMounted {
		return flatvol.ErrNotMounted
	}
	err := validateFileName(name)
	if err != nil {
		return err
	}

	index, inode, err := driver.findInodeByName(name)
	if err != nil {
		return err
	}

	for i := 0; i < MaxDirectBlocks; i++ {
		if inode.Blocks[i] == 0 {
			continue
		}
		err = driver.markBlockFree(c.PhysicalBlock(inode.Blocks[i]))
		if err != nil {
			return err
		}
		driver.superblock.FreeBlocks++
		inode.Blocks[i] = 0
	}

	inode = Inode{}
	err = driver.writeInodeSlot(index, &inode)
	if err != nil {
		return err
	}

	driver.superblock.FreeInodes++
	return nil
}
