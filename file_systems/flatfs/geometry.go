package flatfs

// The volume geometry is fixed at compile time. A flatfs image is always
// exactly 10 MiB: 2560 blocks of 4 KiB, the first ten of which hold the
// superblock, the allocation bitmap and the inode table.
const (
	// BytesPerBlock is the size of a single block, in bytes.
	BytesPerBlock = 4096
	// TotalBlocks is the number of blocks in the disk image.
	TotalBlocks = 2560
	// MaxFiles is the capacity of the inode table.
	MaxFiles = 256
	// MaxDirectBlocks is the number of block pointers stored inline in an
	// inode. There is no indirection, so it also caps the file size.
	MaxDirectBlocks = 12
	// MaxFilenameLength is the size of the on-disk name field, including
	// the NUL terminator. The longest usable name is one byte shorter.
	MaxFilenameLength = 28
	// MetadataBlocks is the number of leading blocks permanently reserved
	// for volume metadata. Their bitmap bits are always set.
	MetadataBlocks = 10

	// MaxFileSize is the largest payload a single file can hold, in bytes.
	MaxFileSize = MaxDirectBlocks * BytesPerBlock

	// TotalSizeBytes is the exact size of a valid disk image.
	TotalSizeBytes = TotalBlocks * BytesPerBlock
)

// Locations of the metadata regions, in blocks.
const (
	SuperblockStart = 0
	BitmapStart     = 1
	InodeTableStart = 2
	// InodeTableBlocks is the size of the region reserved for the inode
	// table. The packed table is smaller; the remainder is dead space.
	InodeTableBlocks = 8
)

// blocksForSize gives the number of blocks needed to hold `size` bytes.
func blocksForSize(size int) int {
	return (size + BytesPerBlock - 1) / BytesPerBlock
}
