package msi

import "sort"

// ZoneKind classifies a byte range of the raw file for a hex-level view.
type ZoneKind uint8

const (
	ZoneHeader ZoneKind = iota
	ZoneFAT
	ZoneDirectory
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneHeader:
		return "Header"
	case ZoneFAT:
		return "FAT Sector"
	case ZoneDirectory:
		return "Directory Sector"
	default:
		return "unknown"
	}
}

// Zone is a byte range of the raw file occupied by one structural region.
type Zone struct {
	Offset uint64
	Length uint64
	Kind   ZoneKind
}

// Zones locates the header, FAT sectors and directory sectors within the
// raw file. Runs of consecutive sectors merge into a single zone.
func (d *Document) Zones() []Zone {
	sectorLen := uint64(d.header.SectorLen())
	zones := []Zone{{Offset: 0, Length: uint64(HEADER_LEN), Kind: ZoneHeader}}

	var fatSectors []uint32
	for _, sect := range d.header.Difat {
		if sect < MAX_REGULAR_SECTOR {
			fatSectors = append(fatSectors, sect)
		}
	}
	zones = append(zones, mergedZones(fatSectors, sectorLen, ZoneFAT)...)

	var dirSectors []uint32
	visited := make(map[uint32]bool)
	sect := d.header.FirstDirSector
	for steps := 0; int64(sect) < int64(len(d.fat)) && steps < MAX_STREAM_SECTORS; steps++ {
		if visited[sect] {
			break
		}
		visited[sect] = true
		dirSectors = append(dirSectors, sect)
		sect = d.fat[sect]
	}
	zones = append(zones, mergedZones(dirSectors, sectorLen, ZoneDirectory)...)

	return zones
}

func mergedZones(sectors []uint32, sectorLen uint64, kind ZoneKind) []Zone {
	if len(sectors) == 0 {
		return nil
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i] < sectors[j] })

	var zones []Zone
	start, count := uint64(sectors[0]), uint64(1)
	flush := func() {
		zones = append(zones, Zone{Offset: (start + 1) * sectorLen, Length: count * sectorLen, Kind: kind})
	}

	for _, sect := range sectors[1:] {
		if uint64(sect) == start+count {
			count++
			continue
		}
		flush()
		start, count = uint64(sect), 1
	}
	flush()

	return zones
}
