package flatvol

// Status codes returned by the external [driver.FileStore] surface. The
// same numeric value can mean different things on different operations;
// see the per-operation documentation.
const (
	// CodeOK indicates success.
	CodeOK = 0
	// CodeExists is returned by Create when the name is already present.
	CodeExists = -1
	// CodeNotFound is returned by Read, Write and Delete when the name is
	// absent, and by Read when the volume is not mounted.
	CodeNotFound = -1
	// CodeNoSpace indicates inode or block exhaustion, or a payload larger
	// than the direct-block limit. Delete also uses it for invalid
	// arguments and unmounted state.
	CodeNoSpace = -2
	// CodeInvalidArgument covers bad names, missing buffers, non-positive
	// sizes, unmounted state on Create/Write, and internal consistency
	// violations such as a corrupt block pointer or a short I/O.
	CodeInvalidArgument = -3
)

// FSStat is a platform-independent summary of the state of a mounted
// volume, in the spirit of [syscall.Statfs_t].
type FSStat struct {
	// BlockSize is the size of a logical block on the volume, in bytes.
	BlockSize int64
	// TotalBlocks is the total number of blocks on the disk image.
	TotalBlocks uint64
	// BlocksFree is the number of unallocated data blocks on the image.
	BlocksFree uint64
	// BlocksAvailable is the number of blocks available for use by user
	// data. Always equal to BlocksFree here; metadata blocks are excluded
	// from both.
	BlocksAvailable uint64
	// Files is the number of used inode slots.
	Files uint64
	// FilesFree is the number of remaining inode slots available for use.
	FilesFree uint64
	// MaxNameLength is the longest possible name for a file, in bytes.
	MaxNameLength int64
}
