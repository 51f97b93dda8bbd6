package dataset_test

import (
	"io"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/arclake-io/arclake/dataset"
	"github.com/arclake-io/arclake/filter"
	"github.com/arclake-io/arclake/io/format/parquet"
	"github.com/arclake-io/arclake/io/fs"
)

type FileSystemDatasetTestSuite struct {
	suite.Suite
	schema *arrow.Schema
	fs     fs.Fs
}

func TestFileSystemDatasetSuite(t *testing.T) {
	suite.Run(t, new(FileSystemDatasetTestSuite))
}

func (s *FileSystemDatasetTestSuite) SetupTest() {
	s.schema = arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	s.fs = fs.NewMemoryFs()
}

func (s *FileSystemDatasetTestSuite) writeBatches(batches []arrow.Record, maxRowsPerFile int64) {
	reader, err := array.NewRecordReader(s.schema, batches)
	s.Require().NoError(err)
	defer reader.Release()

	opts := dataset.NewWriteOptions()
	opts.MaxRowsPerFile = maxRowsPerFile
	files, err := dataset.Write(s.fs, "data", reader, opts)
	s.Require().NoError(err)
	s.Require().NotEmpty(files)
}

func (s *FileSystemDatasetTestSuite) batch(from, to int64) arrow.Record {
	idb := array.NewInt64Builder(memory.DefaultAllocator)
	defer idb.Release()
	sb := array.NewFloat64Builder(memory.DefaultAllocator)
	defer sb.Release()
	for i := from; i < to; i++ {
		idb.Append(i)
		sb.Append(float64(i) / 100)
	}
	ids := idb.NewArray()
	scores := sb.NewArray()
	return array.NewRecord(s.schema, []arrow.Array{ids, scores}, to-from)
}

func (s *FileSystemDatasetTestSuite) TestScanWholeDataset() {
	s.writeBatches([]arrow.Record{s.batch(0, 10), s.batch(10, 20)}, 10)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")

	for _, useThreads := range []bool{false, true} {
		ctx := dataset.NewScanContext()
		ctx.UseThreads = useThreads
		scanner, err := dataset.NewScannerBuilder(ds, ctx).Finish()
		s.NoError(err)

		tbl, err := scanner.ToTable()
		s.NoError(err)
		s.EqualValues(20, tbl.NumRows())

		want := make([]int64, 0, 20)
		for i := int64(0); i < 20; i++ {
			want = append(want, i)
		}
		s.ElementsMatch(want, int64ColumnValues(tbl, 0))
	}
}

func (s *FileSystemDatasetTestSuite) TestScanWithFilterAndProjection() {
	s.writeBatches([]arrow.Record{s.batch(0, 10), s.batch(10, 20), s.batch(20, 30)}, 30)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")

	for _, useThreads := range []bool{false, true} {
		ctx := dataset.NewScanContext()
		ctx.UseThreads = useThreads
		builder := dataset.NewScannerBuilder(ds, ctx)
		// score is excluded from the projection but still drives the filter
		s.NoError(builder.Project("id"))
		s.NoError(builder.Filter(filter.NewComparison(filter.GreaterThanOrEqual, "score", 0.25)))

		scanner, err := builder.Finish()
		s.NoError(err)
		s.Equal([]string{"id", "score"}, scanner.Options().MaterializedFields())

		tbl, err := scanner.ToTable()
		s.NoError(err)
		s.EqualValues(1, tbl.NumCols())
		s.Equal("id", tbl.Schema().Field(0).Name)

		want := []int64{25, 26, 27, 28, 29}
		s.ElementsMatch(want, int64ColumnValues(tbl, 0))
	}
}

func (s *FileSystemDatasetTestSuite) TestRowGroupPruningKeepsResultsExact() {
	// one file, one row group per batch, disjoint id ranges
	s.writeBatches([]arrow.Record{s.batch(0, 10), s.batch(10, 20), s.batch(20, 30)}, 100)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")

	builder := dataset.NewScannerBuilder(ds, dataset.NewScanContext())
	s.NoError(builder.Filter(filter.NewComparison(filter.GreaterThan, "id", int64(24))))

	scanner, err := builder.Finish()
	s.NoError(err)

	tbl, err := scanner.ToTable()
	s.NoError(err)
	s.Equal([]int64{25, 26, 27, 28, 29}, int64ColumnValues(tbl, 0))
}

func (s *FileSystemDatasetTestSuite) TestDisjunctiveFilter() {
	s.writeBatches([]arrow.Record{s.batch(0, 5)}, 100)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")

	for _, useThreads := range []bool{false, true} {
		ctx := dataset.NewScanContext()
		ctx.UseThreads = useThreads
		builder := dataset.NewScannerBuilder(ds, ctx)
		s.NoError(builder.Filter(filter.NewOr(
			filter.NewComparison(filter.Equal, "id", int64(1)),
			filter.NewComparison(filter.Equal, "id", int64(2)),
		)))

		scanner, err := builder.Finish()
		s.NoError(err)

		tbl, err := scanner.ToTable()
		s.NoError(err)
		s.EqualValues(2, tbl.NumRows())
		s.ElementsMatch([]int64{1, 2}, int64ColumnValues(tbl, 0))
	}
}

func (s *FileSystemDatasetTestSuite) TestAbandonedBatchIteratorClose() {
	s.writeBatches([]arrow.Record{s.batch(0, 10)}, 100)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")

	builder := dataset.NewScannerBuilder(ds, dataset.NewScanContext())
	s.NoError(builder.BatchSize(2))
	scanner, err := builder.Finish()
	s.NoError(err)

	tasks, err := scanner.Scan()
	s.NoError(err)
	task, err := tasks.Next()
	s.NoError(err)

	batches, err := task.Execute()
	s.NoError(err)
	_, err = batches.Next()
	s.NoError(err)

	// abandoning the iterator mid-stream must not leak the file reader
	closer, ok := batches.(io.Closer)
	s.Require().True(ok)
	s.NoError(closer.Close())
	s.NoError(closer.Close())

	_, err = batches.Next()
	s.Equal(io.EOF, err)
}

// haltingRecordReader yields its batches and then stops with err.
type haltingRecordReader struct {
	schema  *arrow.Schema
	batches []arrow.Record
	pos     int
	err     error
}

func (r *haltingRecordReader) Retain()               {}
func (r *haltingRecordReader) Release()              {}
func (r *haltingRecordReader) Schema() *arrow.Schema { return r.schema }
func (r *haltingRecordReader) Err() error            { return r.err }

func (r *haltingRecordReader) Next() bool {
	if r.pos < len(r.batches) {
		r.pos++
		return true
	}
	return false
}

func (r *haltingRecordReader) Record() arrow.Record {
	return r.batches[r.pos-1]
}

func (s *FileSystemDatasetTestSuite) dataFiles() []string {
	entries, err := s.fs.List("data")
	s.Require().NoError(err)
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.Path)
	}
	return files
}

func (s *FileSystemDatasetTestSuite) TestWriteClosesFileOnReaderError() {
	reader := &haltingRecordReader{
		schema:  s.schema,
		batches: []arrow.Record{s.batch(0, 3)},
		err:     errors.New("source went away"),
	}
	_, err := dataset.Write(s.fs, "data", reader, dataset.NewWriteOptions())
	s.Error(err)
	s.Contains(err.Error(), "source went away")

	// the file written before the failure was closed, so it reads back
	// as complete parquet
	files := s.dataFiles()
	s.Require().Len(files, 1)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")
	scanner, err := dataset.NewScannerBuilder(ds, dataset.NewScanContext()).Finish()
	s.NoError(err)
	tbl, err := scanner.ToTable()
	s.NoError(err)
	s.EqualValues(3, tbl.NumRows())
}

func (s *FileSystemDatasetTestSuite) TestWriteClosesFileOnWriteError() {
	other := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int64}}, nil)
	xb := array.NewInt64Builder(memory.DefaultAllocator)
	defer xb.Release()
	xb.Append(7)
	xs := xb.NewArray()
	defer xs.Release()
	mismatched := array.NewRecord(other, []arrow.Array{xs}, 1)
	defer mismatched.Release()

	reader := &haltingRecordReader{
		schema:  s.schema,
		batches: []arrow.Record{s.batch(0, 3), mismatched},
	}
	_, err := dataset.Write(s.fs, "data", reader, dataset.NewWriteOptions())
	s.Error(err)

	// the half-written file was still closed and holds the rows written
	// before the failing batch
	files := s.dataFiles()
	s.Require().Len(files, 1)
	r, err := parquet.NewFileReader(s.fs, files[0], &parquet.ReadOptions{})
	s.Require().NoError(err)
	defer r.Close()

	rec, err := r.Read()
	s.Require().NoError(err)
	s.EqualValues(3, rec.NumRows())
	_, err = r.Read()
	s.Equal(io.EOF, err)
}

func (s *FileSystemDatasetTestSuite) TestBatchSizeHint() {
	s.writeBatches([]arrow.Record{s.batch(0, 16)}, 100)
	ds := dataset.NewFileSystemDataset(s.schema, s.fs, "data")

	builder := dataset.NewScannerBuilder(ds, dataset.NewScanContext())
	s.NoError(builder.BatchSize(4))

	scanner, err := builder.Finish()
	s.NoError(err)

	tbl, err := scanner.ToTable()
	s.NoError(err)
	s.EqualValues(16, tbl.NumRows())
}
