package dataset

import (
	"io"
	"strings"

	"github.com/apache/arrow/go/v12/arrow"

	"github.com/arclake-io/arclake/common/constant"
	"github.com/arclake-io/arclake/common/log"
	"github.com/arclake-io/arclake/filter"
	"github.com/arclake-io/arclake/io/fs"
)

// Dataset is a logical collection of fragments sharing one schema.
// GetFragments may use the bound filter to prune fragments; the returned
// iterator is lazy, so no enumeration work happens until it is advanced.
type Dataset interface {
	Schema() *arrow.Schema
	GetFragments(filter filter.Expression) FragmentIterator
}

// InMemoryDataset holds a fixed list of fragments.
type InMemoryDataset struct {
	schema    *arrow.Schema
	fragments []Fragment
}

var _ Dataset = (*InMemoryDataset)(nil)

func NewInMemoryDataset(schema *arrow.Schema, fragments []Fragment) *InMemoryDataset {
	return &InMemoryDataset{schema: schema, fragments: fragments}
}

// NewInMemoryDatasetFromBatches makes one fragment per batch, so batch
// order is fragment order.
func NewInMemoryDatasetFromBatches(schema *arrow.Schema, batches []arrow.Record) *InMemoryDataset {
	fragments := make([]Fragment, 0, len(batches))
	for _, b := range batches {
		fragments = append(fragments, NewInMemoryFragment([]arrow.Record{b}))
	}
	return NewInMemoryDataset(schema, fragments)
}

func (d *InMemoryDataset) Schema() *arrow.Schema {
	return d.schema
}

func (d *InMemoryDataset) GetFragments(filter.Expression) FragmentIterator {
	return MakeVectorIterator(d.fragments)
}

// FileSystemDataset discovers parquet files under a directory. Listing
// is deferred until the fragment iterator is first advanced.
type FileSystemDataset struct {
	schema *arrow.Schema
	fs     fs.Fs
	dir    string
}

var _ Dataset = (*FileSystemDataset)(nil)

func NewFileSystemDataset(schema *arrow.Schema, f fs.Fs, dir string) *FileSystemDataset {
	return &FileSystemDataset{schema: schema, fs: f, dir: dir}
}

func (d *FileSystemDataset) Schema() *arrow.Schema {
	return d.schema
}

func (d *FileSystemDataset) GetFragments(filter.Expression) FragmentIterator {
	// row-level pruning happens per row group inside the file scan tasks
	return &fileDiscoveryIterator{dataset: d}
}

type fileDiscoveryIterator struct {
	dataset *FileSystemDataset
	files   []string
	listed  bool
	pos     int
}

func (it *fileDiscoveryIterator) Next() (Fragment, error) {
	if !it.listed {
		entries, err := it.dataset.fs.List(it.dataset.dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Path, constant.ParquetDataFileSuffix) {
				it.files = append(it.files, e.Path)
			}
		}
		it.listed = true
		log.Debug("discovered dataset files", log.String("dir", it.dataset.dir), log.Int("count", len(it.files)))
	}
	if it.pos >= len(it.files) {
		return nil, io.EOF
	}
	path := it.files[it.pos]
	it.pos++
	return NewFileFragment(it.dataset.fs, path), nil
}
