package msi

import (
	"io"

	"golang.org/x/exp/mmap"
)

// ByteSource is the random-access view an opened document reads from. The
// whole load is one pass over an immutable source; *bytes.Reader satisfies
// the interface for data already held in memory.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

type mmapSource struct {
	*mmap.ReaderAt
}

func (m mmapSource) Size() int64 {
	return int64(m.Len())
}
