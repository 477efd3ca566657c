package msi

import (
	"errors"
	"io"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/exp/mmap"
)

var ErrorInvalidMSI = errors.New("invalid msi file")

// Document is an opened installer database: the compound-file container
// plus the decoded table database on top. Everything is built in one load
// pass and immutable afterwards.
type Document struct {
	src    ByteSource
	closer io.Closer

	header     *Header
	fat        []uint32
	minifat    []uint32
	miniStream []byte

	entries []*DirEntry

	meta Metadata

	stringPool  []string
	stringWidth int
	tableDefs   map[string]*TableDefinition
	files       []FileEntry

	streamCache *lru.Cache[uint32, []byte]
}

// TableInfo names one table together with its row count.
type TableInfo struct {
	Name     string
	RowCount uint32
}

// Open parses the container and, when the database streams are present,
// the installer database. Structural failures (bad signature, unreadable
// allocation table or directory) abort the load; everything else degrades
// to partial or placeholder data.
func Open(src ByteSource) (*Document, error) {
	header, err := readHeader(src)
	if err != nil {
		return nil, err
	}

	d := &Document{src: src, header: header, stringWidth: 2}
	d.meta.TotalSize = uint64(src.Size())

	d.fat, err = loadFAT(src, header)
	if err != nil {
		return nil, err
	}

	if err := d.loadDirectory(); err != nil {
		return nil, err
	}

	d.loadMiniStream()
	d.parseSummaryInformation()

	if d.loadStringPool() {
		d.loadDatabase()
	}

	d.streamCache, err = lru.New[uint32, []byte](STREAM_CACHE_SIZE)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// OpenFile memory-maps path and opens it. Close releases the mapping.
func OpenFile(path string) (*Document, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	doc, err := Open(mmapSource{reader})
	if err != nil {
		reader.Close()
		return nil, err
	}

	doc.closer = reader
	return doc, nil
}

func (d *Document) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// loadDatabase resolves the string-index width once, decodes the schema
// and derives the file manifest.
func (d *Document) loadDatabase() {
	columnsEntry := d.findEntryByDecodedName(COLUMNS_STREAM)

	d.stringWidth = 2
	if columnsEntry != nil && columnsEntry.StreamSize > 0 {
		d.stringWidth = detectStringIndexWidth(columnsEntry.StreamSize, len(d.stringPool))
	}

	d.tableDefs = make(map[string]*TableDefinition)
	if columnsEntry != nil {
		if buf := d.materializeEntry(columnsEntry); len(buf) > 0 {
			d.tableDefs = loadSchema(buf, d.stringWidth, d.getString)
		}
	}

	d.buildManifest()
}

func (d *Document) findEntryByDecodedName(name string) *DirEntry {
	for _, entry := range d.entries {
		if entry.DecodedName == name {
			return entry
		}
	}
	return nil
}

// Header returns the decoded container header.
func (d *Document) Header() Header {
	return *d.header
}

// Metadata returns the decoded SummaryInformation record.
func (d *Document) Metadata() Metadata {
	return d.meta
}

// Root returns the root storage entry.
func (d *Document) Root() *Entry {
	return newEntry(d.entries[ROOT_STREAM_ID])
}

// Entry returns the directory entry with the given arena id, nil when out
// of range.
func (d *Document) Entry(id uint32) *Entry {
	if int64(id) >= int64(len(d.entries)) {
		return nil
	}
	return newEntry(d.entries[id])
}

// NumEntries returns the size of the directory arena, live or not.
func (d *Document) NumEntries() int {
	return len(d.entries)
}

// StringPool returns the interned string table. Index 0 is always empty.
func (d *Document) StringPool() []string {
	return d.stringPool
}

// Files returns the resolved file manifest.
func (d *Document) Files() []FileEntry {
	return d.files
}

// Tables lists every table of the database with its row count, sorted by
// name. Row counts come from the table stream's size and the schema's row
// width.
func (d *Document) Tables() []TableInfo {
	names := make([]string, 0, len(d.tableDefs))
	for name := range d.tableDefs {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		def := d.tableDefs[name]

		var count uint32
		if entry := d.findEntryByDecodedName(TABLE_STREAM_PREFIX + name); entry != nil && def.RowSize > 0 {
			count = uint32(entry.StreamSize / uint64(def.RowSize))
		}

		tables = append(tables, TableInfo{Name: name, RowCount: count})
	}
	return tables
}

// TableDefinition returns the schema of the named table, nil when unknown.
func (d *Document) TableDefinition(name string) *TableDefinition {
	return d.tableDefs[name]
}

// ReadTable decodes all rows of the named table. Unknown tables and tables
// without a backing stream decode to nil.
func (d *Document) ReadTable(name string) []TableRow {
	def, ok := d.tableDefs[name]
	if !ok {
		return nil
	}

	entry := d.findEntryByDecodedName(TABLE_STREAM_PREFIX + name)
	if entry == nil {
		return nil
	}

	return decodeRows(def, d.materializeEntry(entry), d.getString)
}

// ExtractStream materializes the raw payload of the stream entry with the
// given arena id. Results are cached; callers must not modify the returned
// slice.
func (d *Document) ExtractStream(id uint32) []byte {
	if int64(id) >= int64(len(d.entries)) {
		return nil
	}

	if cached, ok := d.streamCache.Get(id); ok {
		return cached
	}

	entry := d.entries[id]
	if entry.ObjType != Stream {
		return nil
	}

	buf := d.materializeEntry(entry)
	d.streamCache.Add(id, buf)
	return buf
}
