package msi

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header is the fixed 512-byte record at the start of every compound file,
// in on-disk layout (everything little-endian).
type Header struct {
	Signature          [8]byte
	CLSID              [16]byte
	MinorVersion       uint16
	MajorVersion       uint16
	ByteOrder          uint16
	SectorShift        uint16 // sector size as a power of two, usually 9 or 12
	MiniSectorShift    uint16 // mini sector size as a power of two, usually 6
	Reserved           [6]byte
	NumDirSectors      uint32
	NumFatSectors      uint32
	FirstDirSector     uint32
	TransactionSig     uint32
	MiniStreamCutoff   uint32 // streams below this size live in the mini stream
	FirstMinifatSector uint32
	NumMinifatSectors  uint32
	FirstDifatSector   uint32
	NumDifatSectors    uint32
	Difat              [NUM_DIFAT_ENTRIES_IN_HEADER]uint32
}

func (h *Header) SectorLen() int {
	return 1 << h.SectorShift
}

func (h *Header) MiniSectorLen() int {
	return 1 << h.MiniSectorShift
}

func readHeader(src ByteSource) (*Header, error) {
	buf := make([]byte, HEADER_LEN)
	if _, err := src.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("file is too small for a header: %w", ErrorInvalidMSI)
	}

	header := &Header{}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, header); err != nil {
		return nil, err
	}

	if !bytes.Equal(header.Signature[:], MAGIC_NUMBER) {
		return nil, fmt.Errorf("bad signature: %w", ErrorInvalidMSI)
	}

	sectorLen := header.SectorLen()
	if sectorLen < 512 || sectorLen > 4096 {
		return nil, fmt.Errorf("unsupported sector size %v: %w", sectorLen, ErrorInvalidMSI)
	}

	if header.MiniSectorShift == 0 || header.MiniSectorShift >= header.SectorShift {
		return nil, fmt.Errorf("unsupported mini sector shift %v: %w", header.MiniSectorShift, ErrorInvalidMSI)
	}

	return header, nil
}
