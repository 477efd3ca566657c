package msi

import (
	"strconv"
	"strings"
)

// FileEntry is one installable file from the File table, joined through its
// component to a resolved install directory path.
type FileEntry struct {
	Name      string
	Directory string
	Component string
	Size      uint32
	Version   string
}

type directoryNode struct {
	parent     string
	defaultDir string
}

// extractLongName returns the long half of a "short|long" compound
// filename, or the whole field when no separator is present.
func extractLongName(raw string) string {
	if pos := strings.IndexByte(raw, '|'); pos >= 0 && pos+1 < len(raw) {
		return raw[pos+1:]
	}
	return raw
}

// resolvePath builds a directory's full install path by walking parent
// links. The memo map caches finished results and is pre-seeded with the
// node's own name before recursing, so a parent cycle collapses to the
// first repeated id instead of looping. Unknown ids resolve to themselves.
func resolvePath(key string, dirs map[string]directoryNode, memo map[string]string) string {
	if cached, ok := memo[key]; ok {
		return cached
	}

	node, ok := dirs[key]
	if !ok {
		return key
	}

	if node.parent == "" || node.parent == key {
		memo[key] = node.defaultDir
		return node.defaultDir
	}

	memo[key] = node.defaultDir
	parent := resolvePath(node.parent, dirs, memo)

	resolved := parent + "\\" + node.defaultDir
	if strings.HasSuffix(parent, "\\") {
		resolved = parent + node.defaultDir
	}

	memo[key] = resolved
	return resolved
}

// buildManifest joins the File, Component and Directory tables into the
// flat list of installable files. Files whose component is unknown land in
// the orphaned bucket rather than failing.
func (d *Document) buildManifest() {
	if _, ok := d.tableDefs["File"]; !ok {
		return
	}

	dirs := make(map[string]directoryNode)
	for _, row := range d.ReadTable("Directory") {
		if len(row) < 3 || row[0] == "" {
			continue
		}
		dirs[row[0]] = directoryNode{parent: row[1], defaultDir: extractLongName(row[2])}
	}

	compToDir := make(map[string]string)
	for _, row := range d.ReadTable("Component") {
		if len(row) < 3 || row[0] == "" {
			continue
		}
		compToDir[row[0]] = row[2]
	}

	// The memo cache lives for exactly this pass.
	memo := make(map[string]string)

	fileRows := d.ReadTable("File")
	files := make([]FileEntry, 0, len(fileRows))

	for _, row := range fileRows {
		if len(row) < 5 {
			continue
		}

		entry := FileEntry{
			Name:      extractLongName(row[2]),
			Component: row[1],
			Version:   row[4],
		}
		if size, err := strconv.ParseUint(row[3], 10, 32); err == nil {
			entry.Size = uint32(size)
		}

		if dirKey, ok := compToDir[entry.Component]; ok {
			entry.Directory = resolvePath(dirKey, dirs, memo)
		} else {
			entry.Directory = ORPHANED_DIR
		}

		files = append(files, entry)
	}

	d.files = files
}
