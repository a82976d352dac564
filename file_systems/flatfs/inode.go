package flatfs

import (
	"bytes"
	"encoding/binary"

	"github.com/avaskys/flatvol"
)

// Inode is one slot of the fixed-size inode table, in its on-disk layout:
// a 32-bit used flag, the NUL-terminated name field, the file size in
// bytes, and the direct block pointers. Slots are packed back to back
// starting at the beginning of the inode table region; a slot may straddle
// a block boundary, which is why slots are accessed as byte extents rather
// than whole blocks.
type Inode struct {
	Used   int32
	Name   [MaxFilenameLength]byte
	Size   int32
	Blocks [MaxDirectBlocks]int32
}

// InodeSlotSize is the size of a serialized inode slot, in bytes.
const InodeSlotSize = 4 + MaxFilenameLength + 4 + 4*MaxDirectBlocks

func (inode *Inode) IsAllocated() bool {
	return inode.Used != 0
}

// FileName returns the stored name up to (not including) its NUL
// terminator. The contents of a free slot's name field are meaningless.
func (inode *Inode) FileName() string {
	end := bytes.IndexByte(inode.Name[:], 0)
	if end < 0 {
		end = len(inode.Name)
	}
	return string(inode.Name[:end])
}

// SetFileName stores `name` in the slot's name field, NUL-terminated. The
// name must already have been validated; anything past the field's capacity
// is truncated.
func (inode *Inode) SetFileName(name string) {
	inode.Name = [MaxFilenameLength]byte{}
	copy(inode.Name[:MaxFilenameLength-1], name)
}

// HasName reports whether the slot is allocated and stores exactly `name`,
// compared byte for byte. No case folding or normalization is performed.
func (inode *Inode) HasName(name string) bool {
	return inode.IsAllocated() && inode.FileName() == name
}

// BlockCount gives the number of leading block pointers that are valid for
// the recorded file size.
func (inode *Inode) BlockCount() int {
	return blocksForSize(int(inode.Size))
}

// inodeSlotOffset gives the absolute byte offset of slot `index` within the
// image.
func inodeSlotOffset(index int) int64 {
	return InodeTableStart*BytesPerBlock + int64(index)*InodeSlotSize
}

// DeserializeInode decodes one slot from `data`, which must hold at least
// InodeSlotSize bytes.
func DeserializeInode(data []byte) (Inode, error) {
	var inode Inode

	reader := bytes.NewReader(data)
	err := binary.Read(reader, binary.LittleEndian, &inode)
	if err != nil {
		return Inode{}, flatvol.ErrIOFailed.Wrap(err)
	}
	return inode, nil
}

// readInodeSlot reads slot `index` from the image.
func (driver *Driver) readInodeSlot(index int) (Inode, error) {
	buffer := make([]byte, InodeSlotSize)
	err := driver.readExtent(inodeSlotOffset(index), buffer)
	if err != nil {
		return Inode{}, err
	}
	return DeserializeInode(buffer)
}

// writeInodeSlot persists slot `index`. Reads and writes always move whole
// slots of the same fixed size, so a slot can never shear.
func (driver *Driver) writeInodeSlot(index int, inode *Inode) error {
	buffer := bytes.NewBuffer(make([]byte, 0, InodeSlotSize))
	err := binary.Write(buffer, binary.LittleEndian, inode)
	if err != nil {
		return flatvol.ErrIOFailed.Wrap(err)
	}
	return driver.writeExtent(inodeSlotOffset(index), buffer.Bytes())
}

// readInodeTable reads the entire packed table into memory, in slot order.
func (driver *Driver) readInodeTable() ([]Inode, error) {
	raw := make([]byte, MaxFiles*InodeSlotSize)
	err := driver.readExtent(inodeSlotOffset(0), raw)
	if err != nil {
		return nil, err
	}

	table := make([]Inode, MaxFiles)
	reader := bytes.NewReader(raw)
	for i := 0; i < MaxFiles; i++ {
		err = binary.Read(reader, binary.LittleEndian, &table[i])
		if err != nil {
			return nil, flatvol.ErrIOFailed.Wrap(err)
		}
	}
	return table, nil
}

// findInodeByName scans the table ascending from slot 0 and returns the
// index of the used slot storing exactly `name`, or ErrNotFound.
func (driver *Driver) findInodeByName(name string) (int, Inode, error) {
	table, err := driver.readInodeTable()
	if err != nil {
		return -1, Inode{}, err
	}

	for i := range table {
		if table[i].HasName(name) {
			return i, table[i], nil
		}
	}
	return -1, Inode{}, flatvol.ErrNotFound
}

// findFreeInodeSlot returns the smallest index of an unused slot, or
// ErrNoSpaceOnDevice when the table is full.
func (driver *Driver) findFreeInodeSlot() (int, error) {
	table, err := driver.readInodeTable()
	if err != nil {
		return -1, err
	}

	for i := range table {
		if !table[i].IsAllocated() {
			return i, nil
		}
	}
	return -1, flatvol.ErrNoSpaceOnDevice.WithMessage("inode table is full")
}
