package msi

// materialize walks a sector chain starting at startSector and concatenates
// one sector payload per step until a sentinel is reached, the accumulated
// data covers size, or the step bound is exceeded. size 0 means unbounded,
// until sentinel. The result is truncated to exactly size when enough data
// was gathered; a shorter result means the chain ended early and callers
// treat it as a corruption signal, not an error.
func (d *Document) materialize(startSector uint32, size uint64, mini bool) []byte {
	table := d.fat
	sectorLen := uint64(d.header.SectorLen())
	if mini {
		table = d.minifat
		sectorLen = uint64(d.header.MiniSectorLen())
	}

	// Allow some slack for fragmentation, but never loop forever.
	maxSectors := MAX_STREAM_SECTORS
	if size > 0 {
		maxSectors = int(size/sectorLen) + STREAM_SECTOR_SLACK
	}

	var result []byte
	sect := startSector

	for steps := 0; sect != END_OF_CHAIN && sect != FREE_SECTOR; steps++ {
		if int64(sect) >= int64(len(table)) || steps >= maxSectors {
			break
		}

		if mini {
			offset := uint64(sect) * sectorLen
			if offset+sectorLen <= uint64(len(d.miniStream)) {
				result = append(result, d.miniStream[offset:offset+sectorLen]...)
			}
		} else {
			// Logical sector 0 sits one sector past the header.
			offset := (int64(sect) + 1) * int64(sectorLen)
			chunk := make([]byte, sectorLen)
			if _, err := d.src.ReadAt(chunk, offset); err == nil {
				result = append(result, chunk...)
			}
		}

		sect = table[sect]

		if size > 0 && uint64(len(result)) >= size {
			result = result[:size]
			break
		}
	}

	return result
}

// materializeEntry reads the full payload of a directory entry, picking the
// mini stream whenever the entry falls below the header's cutoff.
func (d *Document) materializeEntry(entry *DirEntry) []byte {
	mini := entry.StreamSize < uint64(d.header.MiniStreamCutoff)
	return d.materialize(entry.StartSector, entry.StreamSize, mini)
}
