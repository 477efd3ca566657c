package msi

import (
	"encoding/binary"
	"strconv"
)

// TableRow is one decoded row, cells positionally aligned with the owning
// definition's columns. Numeric cells are rendered as decimal strings after
// masking their reserved high bit.
type TableRow = []string

// decodeRows decodes a table's raw stream against its schema. The layout is
// column-oriented: each column owns a contiguous block of width*rowCount
// bytes, blocks in declaration order, so row i's cell for column c sits at
// blockStart[c]+i*width[c]. A cell that would read past the buffer decodes
// to the corruption marker instead of aborting the row or the table.
func decodeRows(def *TableDefinition, buf []byte, lookup func(uint32) string) []TableRow {
	if def.RowSize == 0 {
		return nil
	}
	numRows := len(buf) / def.RowSize

	blockStart := make([]int, len(def.Columns))
	offset := 0
	for c, col := range def.Columns {
		blockStart[c] = offset
		offset += col.Size * numRows
	}

	rows := make([]TableRow, 0, numRows)
	for i := 0; i < numRows; i++ {
		row := make(TableRow, 0, len(def.Columns))

		for c, col := range def.Columns {
			valOffset := blockStart[c] + i*col.Size
			if valOffset+col.Size > len(buf) {
				row = append(row, CORRUPT_CELL)
				continue
			}

			switch col.Type {
			case ColumnInt2:
				val := binary.LittleEndian.Uint16(buf[valOffset:]) & 0x7fff
				row = append(row, strconv.FormatUint(uint64(val), 10))
			case ColumnInt4:
				val := binary.LittleEndian.Uint32(buf[valOffset:]) & 0x7fffffff
				row = append(row, strconv.FormatUint(uint64(val), 10))
			case ColumnString:
				idx, _ := readStringIndex(buf, valOffset, col.Size)
				row = append(row, lookup(idx))
			default:
				row = append(row, "")
			}
		}

		rows = append(rows, row)
	}

	return rows
}
