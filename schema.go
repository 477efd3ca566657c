package msi

import (
	"encoding/binary"
)

// ColumnType is the logical type of a table column. Unknown marks a
// zero-width placeholder for an ordinal never defined by the column table.
type ColumnType uint8

const (
	ColumnUnknown ColumnType = iota
	ColumnString
	ColumnInt2
	ColumnInt4
)

// Packed-type word bits in the !_Columns stream.
const (
	colTypeReservedBit = 0x8000 // stripped before interpretation
	colTypeStringBit   = 0x0800
	colTypeWidthNibble = 0x000f // 2 means a 2-byte integer, otherwise 4
)

type ColumnDefinition struct {
	Name string
	Type ColumnType
	Size int // byte width of this column within a row
}

// TableDefinition is one table's schema: columns ordered by their 1-based
// ordinal, with gaps kept as zero-width placeholders so ordinals stay
// aligned to positions.
type TableDefinition struct {
	Name    string
	Columns []ColumnDefinition
	RowSize int // sum of column widths
}

// detectStringIndexWidth picks the database-wide byte width (2 or 3) of
// string-pool indices. !_Columns rows are 2*width+4 bytes, so the stream
// size is divisible by 8 for 2-byte indices and by 10 for 3-byte ones; a
// tie falls back on whether the pool outgrew 16-bit indices.
func detectStringIndexWidth(columnsSize uint64, poolEntries int) int {
	switch {
	case columnsSize%10 == 0 && columnsSize%8 != 0:
		return 3
	case columnsSize%8 == 0 && columnsSize%10 != 0:
		return 2
	case poolEntries > 65536:
		return 3
	default:
		return 2
	}
}

// readStringIndex reads a little-endian string-pool index of the given
// width (2 or 3 bytes).
func readStringIndex(buf []byte, offset, width int) (uint32, bool) {
	if offset < 0 || offset+width > len(buf) {
		return 0, false
	}
	if width == 2 {
		return uint32(binary.LittleEndian.Uint16(buf[offset:])), true
	}
	return uint32(buf[offset]) | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16, true
}

// loadSchema decodes the !_Columns stream into per-table definitions. The
// stream is column-oriented: four consecutive blocks, each holding one
// field for every row - table-name index, column ordinal, column-name
// index, packed type word. A table defined across many rows converges as
// the rows are consumed; final widths and the row width are assigned after
// all rows.
func loadSchema(buf []byte, stringWidth int, lookup func(uint32) string) map[string]*TableDefinition {
	defs := make(map[string]*TableDefinition)

	rowSize := stringWidth*2 + 4
	numRows := len(buf) / rowSize

	startTable := 0
	startNum := startTable + numRows*stringWidth
	startName := startNum + numRows*2
	startType := startName + numRows*stringWidth

	for i := 0; i < numRows; i++ {
		tableIdx, ok := readStringIndex(buf, startTable+i*stringWidth, stringWidth)
		if !ok {
			break
		}

		colNum, ok := readU16(buf, startNum+i*2)
		if !ok {
			break
		}
		colNum &= 0x7fff // top bit is reserved

		nameIdx, _ := readStringIndex(buf, startName+i*stringWidth, stringWidth)

		diskType, ok := readU16(buf, startType+i*2)
		if !ok {
			break
		}
		diskType &= ^uint16(colTypeReservedBit)

		colType := ColumnString
		if diskType&colTypeStringBit == 0 {
			colType = ColumnInt4
			if diskType&colTypeWidthNibble == 2 {
				colType = ColumnInt2
			}
		}

		tableName := lookup(tableIdx)
		if tableName == "" || tableName == STRING_POOL_ERROR {
			continue
		}
		if colNum == 0 || colNum > 255 {
			continue
		}

		def := defs[tableName]
		if def == nil {
			def = &TableDefinition{Name: tableName}
			defs[tableName] = def
		}

		for len(def.Columns) < int(colNum) {
			def.Columns = append(def.Columns, ColumnDefinition{})
		}
		def.Columns[colNum-1] = ColumnDefinition{Name: lookup(nameIdx), Type: colType}
	}

	for _, def := range defs {
		rowWidth := 0
		for c := range def.Columns {
			col := &def.Columns[c]
			switch col.Type {
			case ColumnInt2:
				col.Size = 2
			case ColumnInt4:
				col.Size = 4
			case ColumnString:
				col.Size = stringWidth
			}
			rowWidth += col.Size
		}
		def.RowSize = rowWidth
	}

	return defs
}
