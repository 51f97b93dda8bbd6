package dataset

import (
	"io"

	"github.com/apache/arrow/go/v12/arrow"

	"github.com/arclake-io/arclake/filter"
	"github.com/arclake-io/arclake/io/format/parquet"
	"github.com/arclake-io/arclake/io/fs"
)

// ScanTask is one independent unit of scan work. Execute returns a lazy,
// finite, non-restartable sequence of record batches built solely from
// the task's own captured inputs. Iterators backed by open files
// implement io.Closer; callers that stop before io.EOF must close them.
type ScanTask interface {
	Execute() (RecordIterator, error)
}

// InMemoryScanTask yields its batches verbatim.
type InMemoryScanTask struct {
	batches []arrow.Record
	options *ScanOptions
	ctx     *ScanContext
}

var _ ScanTask = (*InMemoryScanTask)(nil)

func NewInMemoryScanTask(batches []arrow.Record, options *ScanOptions, ctx *ScanContext) *InMemoryScanTask {
	return &InMemoryScanTask{batches: batches, options: options, ctx: ctx}
}

func (t *InMemoryScanTask) Execute() (RecordIterator, error) {
	return MakeVectorIterator(t.batches), nil
}

// FileScanTask decodes one parquet file. Only the materialized fields
// are read and pushed-down filters prune row groups up front. The bound
// filter expression then drops rows from decoded batches, so disjunctive
// filters apply too, and the result is projected to the scan's output
// schema.
type FileScanTask struct {
	fs      fs.Fs
	path    string
	options *ScanOptions
	ctx     *ScanContext
}

var _ ScanTask = (*FileScanTask)(nil)

func NewFileScanTask(f fs.Fs, path string, options *ScanOptions, ctx *ScanContext) *FileScanTask {
	return &FileScanTask{fs: f, path: path, options: options, ctx: ctx}
}

func (t *FileScanTask) Execute() (RecordIterator, error) {
	filters, err := filter.PushdownFilters(t.options.Filter())
	if err != nil {
		return nil, err
	}
	reader, err := parquet.NewFileReader(t.fs, t.path, &parquet.ReadOptions{
		Columns:   t.options.MaterializedFields(),
		Filters:   filters,
		BatchSize: t.options.BatchSize(),
	})
	if err != nil {
		return nil, err
	}
	return &fileRecordIterator{
		reader:    reader,
		expr:      t.options.Filter(),
		projector: t.options.Projector(),
	}, nil
}

type fileRecordIterator struct {
	reader    *parquet.FileReader
	expr      filter.Expression
	projector *RecordBatchProjector
	done      bool
}

func (it *fileRecordIterator) Next() (arrow.Record, error) {
	if it.done {
		return nil, io.EOF
	}
	for {
		rec, err := it.reader.Read()
		if err != nil {
			it.Close()
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
		// the reader owns rec until the next Read call
		rec.Retain()
		filtered, err := filter.ApplyFilterExpression(rec, it.expr)
		if err != nil {
			rec.Release()
			it.Close()
			return nil, err
		}
		if filtered != rec {
			rec.Release()
		}
		if filtered.NumRows() == 0 {
			filtered.Release()
			continue
		}
		projected, err := it.projector.Project(filtered)
		if err != nil {
			filtered.Release()
			it.Close()
			return nil, err
		}
		if projected != filtered {
			filtered.Release()
		}
		return projected, nil
	}
}

// Close releases the underlying file reader. Draining the iterator to
// io.EOF closes it implicitly; callers that abandon it early must call
// Close themselves. Close is idempotent.
func (it *fileRecordIterator) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	return it.reader.Close()
}
