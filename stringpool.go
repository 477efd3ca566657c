package msi

import (
	"bytes"
	"encoding/binary"
)

// lengthConvention names which 16-bit word of a 4-byte pool record holds
// the entry's byte length in the data stream. The format carries no tag for
// this; the convention is inferred once per load.
type lengthConvention int

const (
	highWordLength lengthConvention = iota
	lowWordLength
)

// detectLengthConvention validates both hypotheses against the data
// stream's total size: the chosen word's lengths must sum to it exactly.
// When both or neither validate the high word wins; the low word is used
// only when it is the sole match. Record 0 is reserved and excluded.
func detectLengthConvention(pool []byte, dataSize int) lengthConvention {
	count := len(pool) / 4

	validates := func(wordOffset int) bool {
		sum := 0
		for i := 1; i < count; i++ {
			sum += int(binary.LittleEndian.Uint16(pool[i*4+wordOffset:]))
			if sum > dataSize {
				return false
			}
		}
		return sum == dataSize
	}

	if validates(0) && !validates(2) {
		return lowWordLength
	}
	return highWordLength
}

// decodeStringPool expands the pool/data stream pair into the interned
// string table. Index 0 is reserved and always empty. A record whose length
// would overrun the data stream gets a placeholder and ends decoding;
// everything before it is kept.
func decodeStringPool(pool, data []byte) []string {
	if len(pool) < 4 {
		return nil
	}

	count := len(pool) / 4
	wordOffset := 2
	if detectLengthConvention(pool, len(data)) == lowWordLength {
		wordOffset = 0
	}

	strings := make([]string, 0, count)
	strings = append(strings, "")

	offset := 0
	for i := 1; i < count; i++ {
		length := int(binary.LittleEndian.Uint16(pool[i*4+wordOffset:]))

		if offset+length > len(data) {
			strings = append(strings, STRING_POOL_ERROR)
			break
		}

		strings = append(strings, string(bytes.TrimRight(data[offset:offset+length], "\x00")))
		offset += length
	}

	return strings
}

// loadStringPool locates the two pool streams and decodes them. Returns
// false when the database streams are absent, which simply means the
// container is not an installer database.
func (d *Document) loadStringPool() bool {
	entryPool := d.findEntryByDecodedName(STRING_POOL_STREAM)
	entryData := d.findEntryByDecodedName(STRING_DATA_STREAM)
	if entryPool == nil || entryData == nil {
		return false
	}

	d.stringPool = decodeStringPool(d.materializeEntry(entryPool), d.materializeEntry(entryData))
	return len(d.stringPool) > 0
}

// getString resolves a string-pool index; out-of-range indices resolve to
// the empty string.
func (d *Document) getString(index uint32) string {
	if int64(index) >= int64(len(d.stringPool)) {
		return ""
	}
	return d.stringPool[index]
}
