package dataset

import (
	"io"
	"sync"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/pkg/errors"

	"github.com/arclake-io/arclake/common/constant"
	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/common/utils"
	"github.com/arclake-io/arclake/filter"
)

// ScanOptions is the per-scan configuration. A builder owns it while
// configuring; Finish hands the scanner its own copy, so concurrent
// scans never observe each other's mutation.
type ScanOptions struct {
	schema    *arrow.Schema
	filter    filter.Expression
	batchSize int64
	projector *RecordBatchProjector
}

func NewScanOptions(schema *arrow.Schema) *ScanOptions {
	return &ScanOptions{
		schema:    schema,
		filter:    filter.True(),
		batchSize: constant.DefaultBatchSize,
		projector: NewRecordBatchProjector(schema),
	}
}

// ReplaceSchema copies the options with a new target schema, re-deriving
// the projector. The filter and batch size carry over; in particular the
// filter stays bound to the schema it was bound against.
func (o *ScanOptions) ReplaceSchema(schema *arrow.Schema) *ScanOptions {
	copied := NewScanOptions(schema)
	copied.filter = o.filter
	copied.batchSize = o.batchSize
	return copied
}

func (o *ScanOptions) Schema() *arrow.Schema {
	return o.schema
}

func (o *ScanOptions) Filter() filter.Expression {
	return o.filter
}

func (o *ScanOptions) BatchSize() int64 {
	return o.batchSize
}

func (o *ScanOptions) Projector() *RecordBatchProjector {
	return o.projector
}

// MaterializedFields lists every column a physical reader must decode:
// the output schema's fields plus any field the filter references that
// projection excluded.
func (o *ScanOptions) MaterializedFields() []string {
	names := make([]string, 0, len(o.schema.Fields()))
	for _, f := range o.schema.Fields() {
		names = append(names, f.Name)
	}
	refs := filter.FieldsInExpression(o.filter)
	extra := make([]string, 0, len(refs))
	for _, ref := range refs {
		extra = append(extra, ref.Name)
	}
	return utils.UniqueUnion(names, extra)
}

// ScannerBuilder validates and binds projection and filter against the
// dataset schema before any I/O happens.
type ScannerBuilder struct {
	dataset        Dataset
	fragment       Fragment
	fragmentSchema *arrow.Schema
	scanOptions    *ScanOptions
	scanContext    *ScanContext
	hasProjection  bool
	projectColumns []string
}

func NewScannerBuilder(ds Dataset, ctx *ScanContext) *ScannerBuilder {
	return &ScannerBuilder{
		dataset:     ds,
		scanOptions: NewScanOptions(ds.Schema()),
		scanContext: ctx,
	}
}

func NewScannerBuilderFromFragment(schema *arrow.Schema, fragment Fragment, ctx *ScanContext) *ScannerBuilder {
	return &ScannerBuilder{
		fragment:       fragment,
		fragmentSchema: schema,
		scanOptions:    NewScanOptions(schema),
		scanContext:    ctx,
	}
}

func (b *ScannerBuilder) schema() *arrow.Schema {
	if b.fragment != nil {
		return b.fragmentSchema
	}
	return b.dataset.Schema()
}

// Project restricts the scan output to the named columns, in the order
// given. Every name must resolve in the dataset schema.
func (b *ScannerBuilder) Project(columns ...string) error {
	for _, column := range columns {
		if _, err := utils.FindFieldIndex(b.schema(), column); err != nil {
			return err
		}
	}
	b.hasProjection = true
	b.projectColumns = columns
	return nil
}

// Filter binds expr against the dataset schema and stores the bound
// expression. Unresolvable field references fail here, before any
// fragment is touched.
func (b *ScannerBuilder) Filter(expr filter.Expression) error {
	bound, err := expr.Bind(b.schema())
	if err != nil {
		return err
	}
	b.scanOptions.filter = bound
	return nil
}

func (b *ScannerBuilder) UseThreads(useThreads bool) {
	b.scanContext.UseThreads = useThreads
}

// BatchSize sets the row count hint handed to fragment readers.
func (b *ScannerBuilder) BatchSize(batchSize int64) error {
	if batchSize <= 0 {
		return errors.Wrapf(lakeerr.ErrInvalidBatchSize, "got %d", batchSize)
	}
	b.scanOptions.batchSize = batchSize
	return nil
}

// Finish produces a Scanner. A requested projection narrows the options
// schema to the requested columns in request order; the filter remains
// bound against the full schema, which is why MaterializedFields can
// still name filter-only columns.
func (b *ScannerBuilder) Finish() (*Scanner, error) {
	var scanOptions *ScanOptions
	if b.hasProjection && len(b.projectColumns) > 0 {
		projected, err := utils.ProjectSchema(b.schema(), b.projectColumns)
		if err != nil {
			return nil, err
		}
		scanOptions = b.scanOptions.ReplaceSchema(projected)
	} else {
		scanOptions = b.scanOptions.ReplaceSchema(b.scanOptions.schema)
	}

	if b.dataset == nil {
		return &Scanner{fragment: b.fragment, options: scanOptions, context: b.scanContext}, nil
	}
	return &Scanner{dataset: b.dataset, options: scanOptions, context: b.scanContext}, nil
}

// Scanner orchestrates fragment enumeration, scan task generation and
// execution. It holds either one fragment or a dataset, never both.
type Scanner struct {
	dataset  Dataset
	fragment Fragment
	options  *ScanOptions
	context  *ScanContext
}

func (s *Scanner) Options() *ScanOptions {
	return s.options
}

// GetFragments returns the fragments this scan covers. Dataset-backed
// scanners defer enumeration until the iterator is advanced, so pruning
// can happen without touching unmatched fragments.
func (s *Scanner) GetFragments() FragmentIterator {
	if s.fragment != nil {
		return MakeVectorIterator([]Fragment{s.fragment})
	}
	return s.dataset.GetFragments(s.options.filter)
}

// Scan composes GetFragments with the fragment-to-task transform into a
// lazy sequence of scan tasks in fragment enumeration order.
func (s *Scanner) Scan() (ScanTaskIterator, error) {
	return &scanTaskIterator{
		fragments: s.GetFragments(),
		options:   s.options,
		context:   s.context,
	}, nil
}

type scanTaskIterator struct {
	fragments FragmentIterator
	current   ScanTaskIterator
	options   *ScanOptions
	context   *ScanContext
}

func (it *scanTaskIterator) Next() (ScanTask, error) {
	for {
		if it.current != nil {
			task, err := it.current.Next()
			if err == io.EOF {
				it.current = nil
				continue
			}
			return task, err
		}
		fragment, err := it.fragments.Next()
		if err != nil {
			return nil, err
		}
		tasks, err := fragment.Scan(it.options, it.context)
		if err != nil {
			return nil, err
		}
		it.current = tasks
	}
}

// ScanTaskIteratorFromRecordBatches wraps pre-materialized batches in a
// single in-memory scan task.
func ScanTaskIteratorFromRecordBatches(batches []arrow.Record, opts *ScanOptions, ctx *ScanContext) ScanTaskIterator {
	return MakeVectorIterator([]ScanTask{NewInMemoryScanTask(batches, opts, ctx)})
}

// tableAssemblyState collects per-task batch groups by task submission
// index. It is shared by pointer between ToTable and every task closure,
// so a failing task cannot invalidate state still in use by tasks that
// are still running.
type tableAssemblyState struct {
	mu      sync.Mutex
	batches [][]arrow.Record
}

func (s *tableAssemblyState) Emplace(b []arrow.Record, pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.batches) <= pos {
		s.batches = append(s.batches, nil)
	}
	s.batches[pos] = b
}

// ToTable eagerly drives the scan: every task is submitted to the
// context's task group tagged with its enumeration index, and the
// resulting batch groups are flattened in that index order. Row order
// therefore matches fragment enumeration order no matter which task
// finishes first.
func (s *Scanner) ToTable() (arrow.Table, error) {
	scanTaskIt, err := s.Scan()
	if err != nil {
		return nil, err
	}
	taskGroup := s.context.TaskGroup()
	state := &tableAssemblyState{}

	scanTaskID := 0
	for {
		scanTask, err := scanTaskIt.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id := scanTaskID
		scanTaskID++
		task := scanTask
		taskGroup.Append(func() error {
			batchIt, err := task.Execute()
			if err != nil {
				return err
			}
			local, err := CollectIterator(batchIt)
			if err != nil {
				return err
			}
			state.Emplace(local, id)
			return nil
		})
	}

	if err := taskGroup.Finish(); err != nil {
		return nil, err
	}

	state.mu.Lock()
	flattened := make([]arrow.Record, 0, len(state.batches))
	for _, taskBatches := range state.batches {
		flattened = append(flattened, taskBatches...)
	}
	state.mu.Unlock()

	return tableFromRecordBatches(s.options.schema, flattened)
}

func tableFromRecordBatches(schema *arrow.Schema, batches []arrow.Record) (arrow.Table, error) {
	for _, b := range batches {
		if !b.Schema().Equal(schema) {
			return nil, errors.Wrapf(lakeerr.ErrSchemaNotMatch, "batch schema %s, table schema %s", b.Schema(), schema)
		}
	}
	return array.NewTableFromRecords(schema, batches), nil
}
