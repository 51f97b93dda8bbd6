package filter

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/common/utils"
)

// ApplyFilters drops the rows of rec that fail any of the filters. The
// input record is returned unchanged when every row passes.
func ApplyFilters(rec arrow.Record, filters []Filter) (arrow.Record, error) {
	if len(filters) == 0 || rec.NumRows() == 0 {
		return rec, nil
	}
	numRows := uint(rec.NumRows())
	keep := bitset.New(numRows)
	keep.FlipRange(0, numRows)

	schema := rec.Schema()
	for _, f := range filters {
		idx, err := utils.FindFieldIndex(schema, f.GetColumnName())
		if err != nil {
			return nil, err
		}
		f.Apply(rec.Column(idx), keep)
	}
	if keep.Count() == numRows {
		return rec, nil
	}
	return compactRecord(rec, keep)
}

// ApplyFilterExpression drops the rows of rec that fail the bound
// expression. Unlike the pushdown path this handles disjunctions, by
// unioning the row sets of their branches. The input record is returned
// unchanged when every row passes.
func ApplyFilterExpression(rec arrow.Record, expr Expression) (arrow.Record, error) {
	if expr == nil || rec.NumRows() == 0 {
		return rec, nil
	}
	numRows := uint(rec.NumRows())
	keep, err := evaluateExpression(rec, expr, numRows)
	if err != nil {
		return nil, err
	}
	if keep.Count() == numRows {
		return rec, nil
	}
	return compactRecord(rec, keep)
}

func evaluateExpression(rec arrow.Record, expr Expression, numRows uint) (*bitset.BitSet, error) {
	switch e := expr.(type) {
	case *Literal:
		keep := bitset.New(numRows)
		if v, ok := e.Value.(bool); ok && v {
			keep.FlipRange(0, numRows)
		}
		return keep, nil
	case *Comparison:
		if !e.Bound() {
			return nil, errors.Wrap(lakeerr.ErrUnboundExpression, e.String())
		}
		idx, err := utils.FindFieldIndex(rec.Schema(), e.Column)
		if err != nil {
			return nil, err
		}
		keep := bitset.New(numRows)
		keep.FlipRange(0, numRows)
		NewConstantFilter(e.Op, e.Column, e.Value).Apply(rec.Column(idx), keep)
		return keep, nil
	case *Logical:
		left, err := evaluateExpression(rec, e.Left, numRows)
		if err != nil {
			return nil, err
		}
		right, err := evaluateExpression(rec, e.Right, numRows)
		if err != nil {
			return nil, err
		}
		if e.Op == LogicalOr {
			left.InPlaceUnion(right)
		} else {
			left.InPlaceIntersection(right)
		}
		return left, nil
	default:
		return nil, errors.Wrapf(lakeerr.ErrUnsupportedType, "cannot evaluate expression %s", expr)
	}
}

func compactRecord(rec arrow.Record, keep *bitset.BitSet) (arrow.Record, error) {
	cols := make([]arrow.Array, rec.NumCols())
	for i := range cols {
		col, err := filterArray(rec.Column(i), keep)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return array.NewRecord(rec.Schema(), cols, int64(keep.Count())), nil
}

func filterArray(arr arrow.Array, keep *bitset.BitSet) (arrow.Array, error) {
	mem := memory.DefaultAllocator
	switch a := arr.(type) {
	case *array.Boolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Int8:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Int16:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Uint8:
		b := array.NewUint8Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Uint64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	case *array.Binary:
		b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
		defer b.Release()
		filterInto(a, keep, b.AppendNull, func(i int) { b.Append(a.Value(i)) })
		return b.NewArray(), nil
	default:
		return nil, errors.Wrapf(lakeerr.ErrUnsupportedType, "cannot filter column of type %s", arr.DataType())
	}
}

func filterInto(arr arrow.Array, keep *bitset.BitSet, appendNull func(), appendValue func(i int)) {
	for i := 0; i < arr.Len(); i++ {
		if !keep.Test(uint(i)) {
			continue
		}
		if arr.IsNull(i) {
			appendNull()
			continue
		}
		appendValue(i)
	}
}
