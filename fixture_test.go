package msi

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Test fixture helpers: hand-assembled compound files and directory
// records, so the container tests run against bit-exact on-disk layouts.

func encodeHeader(h *Header) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

func encodeDirEntry(name string, objType ObjectType, left, right, child, start uint32, size uint64) []byte {
	rec := make([]byte, DIR_ENTRY_LEN)

	units := utf16.Encode([]rune(name))
	for i, u := range units {
		binary.LittleEndian.PutUint16(rec[i*2:], u)
	}
	binary.LittleEndian.PutUint16(rec[64:], uint16((len(units)+1)*2))
	rec[66] = byte(objType)
	rec[67] = 1 // black
	binary.LittleEndian.PutUint32(rec[68:], left)
	binary.LittleEndian.PutUint32(rec[72:], right)
	binary.LittleEndian.PutUint32(rec[76:], child)
	binary.LittleEndian.PutUint32(rec[116:], start)
	binary.LittleEndian.PutUint64(rec[120:], size)

	return rec
}

// testPoolStrings is the interned-string content of the fixture database,
// starting at index 1 (index 0 is the reserved empty entry).
var testPoolStrings = []string{
	"File",            // 1
	"Component",       // 2
	"Directory",       // 3
	"F1",              // 4
	"Comp1",           // 5
	"rdme|readme.txt", // 6
	"1.0.0",           // 7
	"TARGETDIR",       // 8
	"SourceDir",       // 9
	"INSTALLDIR",      // 10
	"app|Application", // 11
	"C",               // 12
}

// buildStringPoolStreams encodes the fixture pool with lengths in the high
// word of each record, the convention the detector must pick here.
func buildStringPoolStreams() (pool, data []byte) {
	pool = append(pool, 0, 0, 0, 0) // record 0 reserved
	for _, s := range testPoolStrings {
		rec := make([]byte, 4)
		binary.LittleEndian.PutUint16(rec[2:], uint16(len(s)))
		pool = append(pool, rec...)
		data = append(data, s...)
	}
	return pool, data
}

type schemaRow struct {
	table, num, name, typ uint16
}

const (
	testStringType = 0x0848 // any packed type with the string bit set
	testInt4Type   = 0x0004
)

// buildColumnsStream lays rows out column-oriented with 2-byte string
// indices: four blocks of table index, ordinal, name index, type word.
func buildColumnsStream(rows []schemaRow) []byte {
	n := len(rows)
	buf := make([]byte, n*8)
	for i, r := range rows {
		binary.LittleEndian.PutUint16(buf[i*2:], r.table)
		binary.LittleEndian.PutUint16(buf[n*2+i*2:], r.num)
		binary.LittleEndian.PutUint16(buf[n*4+i*2:], r.name)
		binary.LittleEndian.PutUint16(buf[n*6+i*2:], r.typ)
	}
	return buf
}

func u16s(values ...uint16) []byte {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

// buildTestContainer assembles a complete single-FAT-sector compound file
// holding one plain stream and a small installer database:
//
//	sector 0: FAT            sector 5: !_StringPool  sector 8:  !Directory
//	sector 1: directory 0-3  sector 6: !_StringData  sector 9:  !Component
//	sector 2: directory 4-7  sector 7: !_Columns     sector 10: !File
//	sector 3-4: "Data" stream (600 bytes)
func buildTestContainer() []byte {
	const sectorLen = 512
	file := make([]byte, sectorLen*12)
	sectorOffset := func(sect int) int { return (sect + 1) * sectorLen }

	header := &Header{
		MinorVersion:       0x3e,
		MajorVersion:       3,
		ByteOrder:          0xfffe,
		SectorShift:        9,
		MiniSectorShift:    6,
		NumFatSectors:      1,
		FirstDirSector:     1,
		MiniStreamCutoff:   0, // force every stream onto the main chain
		FirstMinifatSector: END_OF_CHAIN,
		FirstDifatSector:   END_OF_CHAIN,
	}
	copy(header.Signature[:], MAGIC_NUMBER)
	header.Difat[0] = 0
	for i := 1; i < len(header.Difat); i++ {
		header.Difat[i] = FREE_SECTOR
	}
	copy(file, encodeHeader(header))

	fat := make([]uint32, sectorLen/4)
	for i := range fat {
		fat[i] = FREE_SECTOR
	}
	fat[0] = 0xfffffffd // the FAT sector itself
	fat[1], fat[2] = 2, END_OF_CHAIN
	fat[3], fat[4] = 4, END_OF_CHAIN
	for _, s := range []int{5, 6, 7, 8, 9, 10} {
		fat[s] = END_OF_CHAIN
	}
	for i, v := range fat {
		binary.LittleEndian.PutUint32(file[sectorOffset(0)+i*4:], v)
	}

	poolStream, dataStream := buildStringPoolStreams()

	columnsStream := buildColumnsStream([]schemaRow{
		{3, 1, 12, testStringType}, // Directory
		{3, 2, 12, testStringType},
		{3, 3, 12, testStringType},
		{2, 1, 12, testStringType}, // Component
		{2, 2, 12, testStringType},
		{2, 3, 12, testStringType},
		{1, 1, 12, testStringType}, // File
		{1, 2, 12, testStringType},
		{1, 3, 12, testStringType},
		{1, 4, 12, testInt4Type},
		{1, 5, 12, testStringType},
	})

	// Column-oriented row data, one block per column.
	dirTable := u16s(8, 10, 8, 8, 9, 11)
	compTable := u16s(5, 0, 10)
	fileTable := append(u16s(4, 5, 6), append([]byte{0xd2, 0x04, 0x00, 0x00}, u16s(7)...)...)

	dataPayload := make([]byte, 600)
	for i := range dataPayload {
		dataPayload[i] = byte(i % 251)
	}

	entries := [][]byte{
		encodeDirEntry("Root Entry", Root, NO_STREAM, NO_STREAM, 1, END_OF_CHAIN, 0),
		encodeDirEntry("Data", Stream, NO_STREAM, 2, NO_STREAM, 3, uint64(len(dataPayload))),
		encodeDirEntry("!_StringPool", Stream, NO_STREAM, 3, NO_STREAM, 5, uint64(len(poolStream))),
		encodeDirEntry("!_StringData", Stream, NO_STREAM, 4, NO_STREAM, 6, uint64(len(dataStream))),
		encodeDirEntry("!_Columns", Stream, NO_STREAM, 5, NO_STREAM, 7, uint64(len(columnsStream))),
		encodeDirEntry("!Directory", Stream, NO_STREAM, 6, NO_STREAM, 8, uint64(len(dirTable))),
		encodeDirEntry("!Component", Stream, NO_STREAM, 7, NO_STREAM, 9, uint64(len(compTable))),
		encodeDirEntry("!File", Stream, NO_STREAM, NO_STREAM, NO_STREAM, 10, uint64(len(fileTable))),
	}
	for i, rec := range entries {
		copy(file[sectorOffset(1)+i*DIR_ENTRY_LEN:], rec)
	}

	copy(file[sectorOffset(3):], dataPayload)
	copy(file[sectorOffset(5):], poolStream)
	copy(file[sectorOffset(6):], dataStream)
	copy(file[sectorOffset(7):], columnsStream)
	copy(file[sectorOffset(8):], dirTable)
	copy(file[sectorOffset(9):], compTable)
	copy(file[sectorOffset(10):], fileTable)

	return file
}

func miniStreamContent() []byte {
	content := make([]byte, 256)
	for i := range content {
		content[i] = byte((i*7 + 3) % 256)
	}
	return content
}

// buildMiniStreamContainer assembles a container whose only payload stream
// sits below the mini-stream cutoff: the root entry owns a 256-byte mini
// stream in sector 3, and the 100-byte "Small" stream occupies the
// non-contiguous mini chain 1 -> 3.
//
//	sector 0: FAT      sector 2: MiniFAT
//	sector 1: directory sector 3: mini stream
func buildMiniStreamContainer() []byte {
	const sectorLen = 512
	file := make([]byte, sectorLen*5)
	sectorOffset := func(sect int) int { return (sect + 1) * sectorLen }

	header := &Header{
		MinorVersion:       0x3e,
		MajorVersion:       3,
		ByteOrder:          0xfffe,
		SectorShift:        9,
		MiniSectorShift:    6,
		NumFatSectors:      1,
		FirstDirSector:     1,
		MiniStreamCutoff:   4096,
		FirstMinifatSector: 2,
		NumMinifatSectors:  1,
		FirstDifatSector:   END_OF_CHAIN,
	}
	copy(header.Signature[:], MAGIC_NUMBER)
	header.Difat[0] = 0
	for i := 1; i < len(header.Difat); i++ {
		header.Difat[i] = FREE_SECTOR
	}
	copy(file, encodeHeader(header))

	fat := make([]uint32, sectorLen/4)
	for i := range fat {
		fat[i] = FREE_SECTOR
	}
	fat[0] = 0xfffffffd
	fat[1] = END_OF_CHAIN // directory
	fat[2] = END_OF_CHAIN // MiniFAT
	fat[3] = END_OF_CHAIN // mini stream
	for i, v := range fat {
		binary.LittleEndian.PutUint32(file[sectorOffset(0)+i*4:], v)
	}

	minifat := make([]uint32, sectorLen/4)
	for i := range minifat {
		minifat[i] = FREE_SECTOR
	}
	minifat[1] = 3 // the chain skips mini sector 2
	minifat[3] = END_OF_CHAIN
	for i, v := range minifat {
		binary.LittleEndian.PutUint32(file[sectorOffset(2)+i*4:], v)
	}

	miniStream := miniStreamContent()
	copy(file[sectorOffset(3):], miniStream)

	entries := [][]byte{
		encodeDirEntry("Root Entry", Root, NO_STREAM, NO_STREAM, 1, 3, uint64(len(miniStream))),
		encodeDirEntry("Small", Stream, NO_STREAM, NO_STREAM, NO_STREAM, 1, 100),
	}
	for i, rec := range entries {
		copy(file[sectorOffset(1)+i*DIR_ENTRY_LEN:], rec)
	}

	return file
}
