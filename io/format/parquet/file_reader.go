package parquet

import (
	"context"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/arclake-io/arclake/common/constant"
	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/filter"
	"github.com/arclake-io/arclake/io/format"
	"github.com/arclake-io/arclake/io/fs"
)

// ReadOptions narrows what a FileReader decodes.
type ReadOptions struct {
	// Columns to decode; empty means every column.
	Columns []string
	// Filters prune row groups via column statistics. They do not drop
	// individual rows; callers do that on the decoded batches.
	Filters []filter.Filter
	// BatchSize is the row count hint per decoded record.
	BatchSize int64
}

var _ format.Reader = (*FileReader)(nil)

// FileReader decodes one parquet file, restricted to the requested
// columns and to the row groups the filters cannot rule out.
type FileReader struct {
	reader *file.Reader
	rec    pqarrow.RecordReader
}

func NewFileReader(f fs.Fs, filePath string, opts *ReadOptions) (*FileReader, error) {
	src, err := f.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	parquetReader, err := file.NewParquetReader(src)
	if err != nil {
		return nil, err
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = constant.DefaultBatchSize
	}
	arrowReader, err := pqarrow.NewFileReader(parquetReader, pqarrow.ArrowReadProperties{BatchSize: batchSize}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}

	md := parquetReader.MetaData()
	var columnIndices []int
	for _, c := range opts.Columns {
		idx := md.Schema.ColumnIndexByName(c)
		if idx < 0 {
			return nil, errors.Wrap(lakeerr.ErrColumnNotExist, c)
		}
		columnIndices = append(columnIndices, idx)
	}

	rowGroups, err := selectRowGroups(parquetReader, opts.Filters)
	if err != nil {
		return nil, err
	}

	rec, err := arrowReader.GetRecordReader(context.TODO(), columnIndices, rowGroups)
	if err != nil {
		return nil, err
	}
	return &FileReader{reader: parquetReader, rec: rec}, nil
}

// selectRowGroups keeps the row groups whose statistics do not prove
// every filter unsatisfiable.
func selectRowGroups(reader *file.Reader, filters []filter.Filter) ([]int, error) {
	md := reader.MetaData()
	rowGroups := make([]int, 0, reader.NumRowGroups())
	for i := 0; i < reader.NumRowGroups(); i++ {
		rg := md.RowGroup(i)
		skip := false
		for _, f := range filters {
			columnIndex := rg.Schema.ColumnIndexByName(f.GetColumnName())
			if columnIndex < 0 {
				continue
			}
			columnChunk, err := rg.ColumnChunk(columnIndex)
			if err != nil {
				return nil, err
			}
			columnStats, err := columnChunk.Statistics()
			if err != nil {
				return nil, err
			}
			if columnStats == nil || !columnStats.HasMinMax() {
				continue
			}
			if f.CheckStatistics(columnStats) {
				skip = true
				break
			}
		}
		if !skip {
			rowGroups = append(rowGroups, i)
		}
	}
	return rowGroups, nil
}

func (r *FileReader) Read() (arrow.Record, error) {
	return r.rec.Read()
}

func (r *FileReader) Schema() (*arrow.Schema, error) {
	return r.rec.Schema(), nil
}

func (r *FileReader) Close() error {
	r.rec.Release()
	return r.reader.Close()
}
