package msi

import (
	"github.com/google/uuid"
)

// Entry is the public view over one directory record, keyed by its arena
// id. Children holds the ids of the entries inside this storage, in the
// sibling tree's in-order sequence.
type Entry struct {
	ID           uint32
	Name         string
	DecodedName  string
	ObjType      ObjectType
	CLSID        uuid.UUID
	StateBits    uint32
	CreationTime uint64
	ModifiedTime uint64
	StreamSize   uint64
	Children     []uint32
}

func newEntry(dirEntry *DirEntry) *Entry {
	return &Entry{
		ID:           dirEntry.ID,
		Name:         dirEntry.Name,
		DecodedName:  dirEntry.DecodedName,
		ObjType:      dirEntry.ObjType,
		CLSID:        uuid.UUID(dirEntry.CLSID),
		StateBits:    dirEntry.StateBits,
		CreationTime: dirEntry.CreationTime,
		ModifiedTime: dirEntry.ModifiedTime,
		StreamSize:   dirEntry.StreamSize,
		Children:     dirEntry.Children,
	}
}
