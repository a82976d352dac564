package flatfs

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInodeSlotSizeMatchesLayout(t *testing.T) {
	require.EqualValues(
		t,
		InodeSlotSize,
		binary.Size(Inode{}),
		"declared slot size doesn't match its binary layout")

	// The packed table must fit in its reserved region.
	require.LessOrEqual(
		t,
		MaxFiles*InodeSlotSize,
		InodeTableBlocks*BytesPerBlock,
		"inode table overflows its reserved blocks")
}

func TestInodeSlotOffsets(t *testing.T) {
	assert.EqualValues(t, 2*BytesPerBlock, inodeSlotOffset(0))
	assert.EqualValues(t, 2*BytesPerBlock+InodeSlotSize, inodeSlotOffset(1))
	assert.EqualValues(
		t,
		2*BytesPerBlock+(MaxFiles-1)*InodeSlotSize,
		inodeSlotOffset(MaxFiles-1))
}

func TestInodeFileNameRoundTrip(t *testing.T) {
	var inode Inode
	inode.Used = 1
	inode.SetFileName("hello.txt")

	assert.Equal(t, "hello.txt", inode.FileName())
	assert.True(t, inode.HasName("hello.txt"))
	assert.False(t, inode.HasName("HELLO.TXT"), "name comparison must be case-sensitive")
	assert.False(t, inode.HasName("hello.txt2"))
	assert.False(t, inode.HasName("hello.tx"))
}

func TestInodeSetFileNameClearsOldName(t *testing.T) {
	var inode Inode
	inode.Used = 1
	inode.SetFileName(strings.Repeat("a", MaxFilenameLength-1))
	inode.SetFileName("b")

	assert.Equal(t, "b", inode.FileName())
	assert.EqualValues(t, 0, inode.Name[1], "name must be NUL-terminated")
	assert.EqualValues(t, 0, inode.Name[2], "stale name bytes must be cleared")
}

func TestInodeFreeSlotNameIgnored(t *testing.T) {
	var inode Inode
	inode.SetFileName("ghost")

	assert.False(t, inode.HasName("ghost"), "a free slot matches no name")
}

func TestInodeBlockCount(t *testing.T) {
	var inode Inode
	assert.Equal(t, 0, inode.BlockCount())

	inode.Size = 1
	assert.Equal(t, 1, inode.BlockCount())

	inode.Size = BytesPerBlock
	assert.Equal(t, 1, inode.BlockCount())

	inode.Size = BytesPerBlock + 1
	assert.Equal(t, 2, inode.BlockCount())

	inode.Size = MaxFileSize
	assert.Equal(t, MaxDirectBlocks, inode.BlockCount())
}

func TestInodeCodecRoundTrip(t *testing.T) {
	original := Inode{Used: 1, Size: 9000}
	original.SetFileName("roundtrip")
	original.Blocks[0] = 10
	original.Blocks[1] = 11
	original.Blocks[2] = 200

	raw := make([]byte, InodeSlotSize)
	require.NoError(t, binary.Write(bytewriter.New(raw), binary.LittleEndian, &original))

	decoded, err := DeserializeInode(raw)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
