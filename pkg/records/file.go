package records

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// File is a memory-mapped input dataset exposed as a sequential reader
type File struct {
	*io.SectionReader
	mapped *mmap.ReaderAt
	path   string
}

// OpenFile maps path read-only
func OpenFile(path string) (*File, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &File{
		SectionReader: io.NewSectionReader(reader, 0, int64(reader.Len())),
		mapped:        reader,
		path:          path,
	}, nil
}

// Path returns the file path
func (f *File) Path() string {
	return f.path
}

// Close unmaps the file
func (f *File) Close() error {
	return f.mapped.Close()
}
