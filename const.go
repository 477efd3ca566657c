package msi

// ========================================================================= //

const (
	HEADER_LEN                  int = 512 // length of compound file header, in bytes
	DIR_ENTRY_LEN               int = 128 // length of directory entry, in bytes
	NUM_DIFAT_ENTRIES_IN_HEADER int = 109
)

// Constants for compound file header values:
var MAGIC_NUMBER = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// Constants for FAT entries:
const (
	MAX_REGULAR_SECTOR uint32 = 0xfffffffa
	END_OF_CHAIN       uint32 = 0xfffffffe
	FREE_SECTOR        uint32 = 0xffffffff
)

// Constants for directory entries:
const (
	ROOT_STREAM_ID uint32 = 0
	NO_STREAM      uint32 = 0xffffffff
)

// Hard iteration caps guarding cyclic or adversarial chains. Exceeding a
// cap truncates the result, it never fails the load.
const (
	MAX_DIFAT_SECTORS   = 10000
	MAX_STREAM_SECTORS  = 20000
	STREAM_SECTOR_SLACK = 100
)

// Special stream names, after MSI name decompression, that drive database
// decoding. Every table stream carries the "!" prefix.
const (
	STRING_POOL_STREAM  = "!_StringPool"
	STRING_DATA_STREAM  = "!_StringData"
	COLUMNS_STREAM      = "!_Columns"
	TABLE_STREAM_PREFIX = "!"
	SUMMARY_INFO_MARKER = "SummaryInformation"
)

// Placeholder values substituted for locally unrecoverable data.
const (
	STRING_POOL_ERROR = "<Error>"
	CORRUPT_CELL      = "<Corrupt>"
	ORPHANED_DIR      = "<Orphaned>"
)

const STREAM_CACHE_SIZE = 32

// ObjectType classifies a directory entry.
type ObjectType uint8

const (
	Unallocated ObjectType = 0
	Storage     ObjectType = 1
	Stream      ObjectType = 2
	Root        ObjectType = 5
)

func (o ObjectType) String() string {
	switch o {
	case Unallocated:
		return "unallocated"
	case Storage:
		return "storage"
	case Stream:
		return "stream"
	case Root:
		return "root"
	default:
		return "unknown"
	}
}
