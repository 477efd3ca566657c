package msi

import (
	"encoding/binary"
	"fmt"
)

// loadFAT builds the sector allocation table: the header's 109 inline DIFAT
// slots name the first FAT sectors, the overflow DIFAT chain names the rest.
// FAT entries are copied verbatim so sector N's successor stays at table
// offset N.
func loadFAT(src ByteSource, header *Header) ([]uint32, error) {
	sectorLen := header.SectorLen()

	difat := make([]uint32, 0, NUM_DIFAT_ENTRIES_IN_HEADER)
	for _, sect := range header.Difat {
		if sect == END_OF_CHAIN || sect == FREE_SECTOR {
			break
		}
		difat = append(difat, sect)
	}

	// Each overflow DIFAT sector holds sectorLen/4-1 FAT sector numbers and
	// one pointer to the next overflow sector.
	entriesPerDifat := sectorLen/4 - 1
	currentDifatSector := header.FirstDifatSector
	sectorBuf := make([]byte, sectorLen)

	for steps := 0; currentDifatSector != END_OF_CHAIN && currentDifatSector != FREE_SECTOR; steps++ {
		if steps >= MAX_DIFAT_SECTORS {
			break
		}

		offset := (int64(currentDifatSector) + 1) * int64(sectorLen)
		if _, err := src.ReadAt(sectorBuf, offset); err != nil {
			break
		}

		for k := 0; k < entriesPerDifat; k++ {
			next := binary.LittleEndian.Uint32(sectorBuf[k*4:])
			if next != END_OF_CHAIN && next != FREE_SECTOR {
				difat = append(difat, next)
			}
		}

		currentDifatSector = binary.LittleEndian.Uint32(sectorBuf[entriesPerDifat*4:])
	}

	fat := make([]uint32, 0, len(difat)*(sectorLen/4))
	for _, sect := range difat {
		offset := (int64(sect) + 1) * int64(sectorLen)
		if _, err := src.ReadAt(sectorBuf, offset); err != nil {
			continue
		}

		for k := 0; k < sectorLen/4; k++ {
			fat = append(fat, binary.LittleEndian.Uint32(sectorBuf[k*4:]))
		}
	}

	if len(fat) == 0 {
		return nil, fmt.Errorf("allocation table is empty: %w", ErrorInvalidMSI)
	}

	return fat, nil
}

// loadMiniStream reads the MiniFAT chain and materializes the mini stream
// out of the root entry. Small streams are sliced from that single buffer.
func (d *Document) loadMiniStream() {
	raw := d.materialize(d.header.FirstMinifatSector, 0, false)

	d.minifat = make([]uint32, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		d.minifat = append(d.minifat, binary.LittleEndian.Uint32(raw[i:]))
	}

	root := d.entries[ROOT_STREAM_ID]
	if root.StreamSize > 0 {
		d.miniStream = d.materialize(root.StartSector, root.StreamSize, false)
	}
}
