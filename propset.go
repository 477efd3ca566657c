package msi

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// Metadata is the decoded SummaryInformation property set. Timestamps are
// Unix seconds, zero when absent.
type Metadata struct {
	Title           string
	Subject         string
	Author          string
	Keywords        string
	Comments        string
	RevisionNumber  string
	CreatingApp     string
	Codepage        uint16
	CreateTime      int64
	LastSaveTime    int64
	LastPrintedTime int64
	PageCount       uint32
	WordCount       uint32
	Security        uint32
	TotalSize       uint64
}

// Property set value type tags (low 16 bits of the 4-byte type marker).
const (
	vtI2       = 2
	vtI4       = 3
	vtLpstr    = 30
	vtFiletime = 64
)

// SummaryInformation property ids used by installer databases.
const (
	pidCodepage    = 1
	pidTitle       = 2
	pidSubject     = 3
	pidAuthor      = 4
	pidKeywords    = 5
	pidComments    = 6
	pidRevision    = 9
	pidCreated     = 12
	pidLastSaved   = 13
	pidPageCount   = 14
	pidWordCount   = 15
	pidCreatingApp = 18
	pidSecurity    = 19
)

// Seconds between the FILETIME epoch (1601) and the Unix epoch (1970).
const filetimeUnixDiff = 11644473600

func readU16(b []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(b) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b[off:]), true
}

func readU32(b []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[off:]), true
}

func readU64(b []byte, off int) (uint64, bool) {
	if off < 0 || off+8 > len(b) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b[off:]), true
}

func filetimeToUnix(ft uint64) int64 {
	seconds := ft / 10000000
	if seconds <= filetimeUnixDiff {
		return 0
	}
	return int64(seconds - filetimeUnixDiff)
}

// parseLpstr decodes a length-prefixed byte string value, stripping
// trailing NULs. The length is clamped to the remaining buffer.
func parseLpstr(value []byte) string {
	if len(value) < 8 {
		return ""
	}

	strLen, ok := readU32(value, 4)
	if !ok || strLen == 0 {
		return ""
	}
	if int64(strLen) > int64(len(value)-8) {
		strLen = uint32(len(value) - 8)
	}

	return string(bytes.TrimRight(value[8:8+strLen], "\x00"))
}

// parsePropertySet decodes the first property section of a
// SummaryInformation stream into meta. Out-of-bounds offsets and counts are
// clamped or skipped, never fatal; unrecognized property ids are ignored.
func parsePropertySet(buf []byte, meta *Metadata) {
	if len(buf) < 48 {
		return
	}

	sectionOffset, ok := readU32(buf, 44)
	if !ok || int64(sectionOffset) >= int64(len(buf)) {
		return
	}

	section := buf[sectionOffset:]
	if len(section) < 8 {
		return
	}

	propertyCount, _ := readU32(section, 4)
	listAvail := len(section) - 8
	if int64(propertyCount) > int64(listAvail/8) {
		propertyCount = uint32(listAvail / 8)
	}

	for i := 0; i < int(propertyCount); i++ {
		propID, _ := readU32(section, 8+i*8)
		propOffset, _ := readU32(section, 8+i*8+4)
		if int64(propOffset) >= int64(len(section)) {
			continue
		}

		value := section[propOffset:]
		typeTag, ok := readU32(value, 0)
		if !ok {
			continue
		}

		switch typeTag & 0xffff {
		case vtLpstr:
			s := parseLpstr(value)
			switch propID {
			case pidTitle:
				meta.Title = s
			case pidSubject:
				meta.Subject = s
			case pidAuthor:
				meta.Author = s
			case pidKeywords:
				meta.Keywords = s
			case pidComments:
				meta.Comments = s
			case pidRevision:
				meta.RevisionNumber = s
			case pidCreatingApp:
				meta.CreatingApp = s
			}

		case vtFiletime:
			ft, ok := readU64(value, 4)
			if !ok {
				continue
			}
			switch propID {
			case pidCreated:
				meta.CreateTime = filetimeToUnix(ft)
			case pidLastSaved:
				meta.LastSaveTime = filetimeToUnix(ft)
			default:
				meta.LastPrintedTime = filetimeToUnix(ft)
			}

		case vtI2:
			if propID == pidCodepage {
				if v, ok := readU16(value, 4); ok {
					meta.Codepage = v
				}
			}

		case vtI4:
			v, ok := readU32(value, 4)
			if !ok {
				continue
			}
			switch propID {
			case pidPageCount:
				meta.PageCount = v
			case pidWordCount:
				meta.WordCount = v
			case pidSecurity:
				meta.Security = v
			}
		}
	}
}

// parseSummaryInformation finds the first stream whose raw name contains
// the SummaryInformation marker and decodes it. Only the first property
// section is parsed.
func (d *Document) parseSummaryInformation() {
	for _, entry := range d.entries {
		if !strings.Contains(entry.Name, SUMMARY_INFO_MARKER) {
			continue
		}
		parsePropertySet(d.materializeEntry(entry), &d.meta)
		return
	}
}
