package dataset

import (
	"github.com/apache/arrow/go/v12/arrow"

	"github.com/arclake-io/arclake/io/fs"
)

// Fragment is one physical or logical unit of a dataset able to produce
// record batches when combined with scan options and a context.
type Fragment interface {
	Scan(opts *ScanOptions, ctx *ScanContext) (ScanTaskIterator, error)
}

// InMemoryFragment holds pre-materialized record batches.
type InMemoryFragment struct {
	batches []arrow.Record
}

var _ Fragment = (*InMemoryFragment)(nil)

func NewInMemoryFragment(batches []arrow.Record) *InMemoryFragment {
	return &InMemoryFragment{batches: batches}
}

func (f *InMemoryFragment) Scan(opts *ScanOptions, ctx *ScanContext) (ScanTaskIterator, error) {
	return MakeVectorIterator([]ScanTask{NewInMemoryScanTask(f.batches, opts, ctx)}), nil
}

// FileFragment is a single parquet file on some filesystem.
type FileFragment struct {
	fs   fs.Fs
	path string
}

var _ Fragment = (*FileFragment)(nil)

func NewFileFragment(f fs.Fs, path string) *FileFragment {
	return &FileFragment{fs: f, path: path}
}

func (f *FileFragment) Path() string {
	return f.path
}

func (f *FileFragment) Scan(opts *ScanOptions, ctx *ScanContext) (ScanTaskIterator, error) {
	return MakeVectorIterator([]ScanTask{NewFileScanTask(f.fs, f.path, opts, ctx)}), nil
}
