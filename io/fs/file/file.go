package file

import "io"

// File is the access surface parquet readers and writers need from any
// storage backend.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Writer
	io.Closer
}
