package msi

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// rawDirEntry is the fixed 128-byte on-disk directory record.
type rawDirEntry struct {
	Name         [32]uint16
	NameLen      uint16
	ObjType      uint8
	Color        uint8
	LeftSibling  uint32
	RightSibling uint32
	Child        uint32
	CLSID        [16]byte
	StateBits    uint32
	CreationTime uint64
	ModifiedTime uint64
	StartSector  uint32
	StreamSize   uint64
}

// DirEntry is one slot of the flat directory arena. Sibling and child ids
// are lookup relations into the same arena, never ownership; the owned
// parent-to-children hierarchy lives in Children, derived once by tree
// reconstruction.
type DirEntry struct {
	ID           uint32
	Name         string // raw name, UTF-16LE decoded
	DecodedName  string // name after MSI decompression
	ObjType      ObjectType
	Color        uint8
	LeftSibling  uint32
	RightSibling uint32
	Child        uint32
	CLSID        [16]byte
	StateBits    uint32
	CreationTime uint64
	ModifiedTime uint64
	StartSector  uint32
	StreamSize   uint64

	Children []uint32 // arena ids of this storage's entries, in sibling-tree order
}

// parseDirectoryEntries decodes a directory stream as a flat array of
// 128-byte records. Trailing bytes short of a full record are ignored.
func parseDirectoryEntries(dirStream []byte) ([]*DirEntry, error) {
	count := len(dirStream) / DIR_ENTRY_LEN
	entries := make([]*DirEntry, 0, count)

	for i := 0; i < count; i++ {
		rec := dirStream[i*DIR_ENTRY_LEN : (i+1)*DIR_ENTRY_LEN]

		var raw rawDirEntry
		if err := binary.Read(bytes.NewReader(rec), binary.LittleEndian, &raw); err != nil {
			return nil, err
		}

		entry := &DirEntry{
			ID:           uint32(i),
			ObjType:      ObjectType(raw.ObjType),
			Color:        raw.Color,
			LeftSibling:  raw.LeftSibling,
			RightSibling: raw.RightSibling,
			Child:        raw.Child,
			CLSID:        raw.CLSID,
			StateBits:    raw.StateBits,
			CreationTime: raw.CreationTime,
			ModifiedTime: raw.ModifiedTime,
			StartSector:  raw.StartSector,
			StreamSize:   raw.StreamSize,
		}

		nameByteLen := int(raw.NameLen)
		if nameByteLen > 64 {
			nameByteLen = 64
		}
		if nameByteLen >= 2 {
			nameByteLen -= 2 // strip the NUL terminator
		}
		nameByteLen &^= 1

		if nameByteLen > 0 {
			decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
			if name, err := decoder.Bytes(rec[:nameByteLen]); err == nil {
				entry.Name = string(name)
			}
			entry.DecodedName = DecompressName(raw.Name[:nameByteLen/2])
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// loadDirectory materializes the directory chain (unbounded, its true size
// is implicit in the chain), parses the arena and reconstructs the tree.
func (d *Document) loadDirectory() error {
	dirStream := d.materialize(d.header.FirstDirSector, 0, false)
	if len(dirStream) == 0 {
		return fmt.Errorf("directory stream is empty: %w", ErrorInvalidMSI)
	}

	entries, err := parseDirectoryEntries(dirStream)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("directory has no entries: %w", ErrorInvalidMSI)
	}

	d.entries = entries
	d.buildTree(ROOT_STREAM_ID, make(map[uint32]bool))
	return nil
}

// buildTree fills Children for the given storage and recurses into child
// storages. The seen set stops child pointers that loop back up the tree.
func (d *Document) buildTree(id uint32, seen map[uint32]bool) {
	if seen[id] {
		return
	}
	seen[id] = true

	entry := d.entries[id]
	if entry.Child == NO_STREAM {
		return
	}

	entry.Children = d.inOrderSiblings(entry.Child)
	for _, childID := range entry.Children {
		child := d.entries[childID]
		if child.ObjType == Storage || child.ObjType == Root {
			d.buildTree(childID, seen)
		}
	}
}

// inOrderSiblings walks the binary sibling tree rooted at rootID in order
// (left subtree, self, right subtree), visiting each live node exactly
// once. The walk is iterative with an explicit frame stack so adversarial
// tree depth cannot exhaust the call stack; the visited set bounds cyclic
// sibling links.
func (d *Document) inOrderSiblings(rootID uint32) []uint32 {
	type frame struct {
		id      uint32
		emitted bool
	}

	var order []uint32
	visited := make(map[uint32]bool)
	stack := []frame{{id: rootID}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.emitted {
			order = append(order, f.id)
			continue
		}
		if f.id == NO_STREAM || int64(f.id) >= int64(len(d.entries)) || visited[f.id] {
			continue
		}
		visited[f.id] = true

		node := d.entries[f.id]
		// Left-self-right, so push in reverse.
		stack = append(stack, frame{id: node.RightSibling})
		stack = append(stack, frame{id: f.id, emitted: true})
		stack = append(stack, frame{id: node.LeftSibling})
	}

	return order
}
