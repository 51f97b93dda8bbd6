package filter

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
)

func buildInt32Array(values []int32) arrow.Array {
	b := array.NewInt32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

func TestConstantFilterApply(t *testing.T) {
	arr := buildInt32Array([]int32{1, 5, 3, 8, 2})
	defer arr.Release()

	bs := bitset.New(5)
	bs.FlipRange(0, 5)
	NewConstantFilter(GreaterThan, "v", int32(2)).Apply(arr, bs)

	assert.False(t, bs.Test(0))
	assert.True(t, bs.Test(1))
	assert.True(t, bs.Test(2))
	assert.True(t, bs.Test(3))
	assert.False(t, bs.Test(4))
}

func TestConstantFilterApplyNulls(t *testing.T) {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues([]int64{10, 0, 30}, []bool{true, false, true})
	arr := b.NewArray()
	defer arr.Release()

	bs := bitset.New(3)
	bs.FlipRange(0, 3)
	NewConstantFilter(GreaterThanOrEqual, "v", int64(0)).Apply(arr, bs)

	assert.True(t, bs.Test(0))
	assert.False(t, bs.Test(1), "null rows never match")
	assert.True(t, bs.Test(2))
}

func TestConstantFilterCheckDataType(t *testing.T) {
	f := NewConstantFilter(Equal, "v", int64(3))
	assert.NoError(t, f.CheckDataType(arrow.PrimitiveTypes.Int32))
	assert.Error(t, f.CheckDataType(arrow.BinaryTypes.String))
	assert.Error(t, NewConstantFilter(Equal, "v", "s").CheckDataType(arrow.PrimitiveTypes.Int32))
}

func TestApplyFilters(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	idb := array.NewInt64Builder(memory.DefaultAllocator)
	defer idb.Release()
	idb.AppendValues([]int64{1, 2, 3, 4}, nil)
	ids := idb.NewArray()
	defer ids.Release()

	nb := array.NewStringBuilder(memory.DefaultAllocator)
	defer nb.Release()
	nb.AppendValues([]string{"a", "b", "c", "d"}, nil)
	names := nb.NewArray()
	defer names.Release()

	rec := array.NewRecord(schema, []arrow.Array{ids, names}, 4)
	defer rec.Release()

	out, err := ApplyFilters(rec, []Filter{NewConstantFilter(GreaterThan, "id", int64(2))})
	assert.NoError(t, err)
	assert.EqualValues(t, 2, out.NumRows())
	assert.Equal(t, []int64{3, 4}, out.Column(0).(*array.Int64).Int64Values())
	assert.Equal(t, "c", out.Column(1).(*array.String).Value(0))
	assert.Equal(t, "d", out.Column(1).(*array.String).Value(1))
}

func TestApplyFiltersAllRowsPass(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil)
	idb := array.NewInt64Builder(memory.DefaultAllocator)
	defer idb.Release()
	idb.AppendValues([]int64{1, 2}, nil)
	ids := idb.NewArray()
	defer ids.Release()
	rec := array.NewRecord(schema, []arrow.Array{ids}, 2)
	defer rec.Release()

	out, err := ApplyFilters(rec, []Filter{NewConstantFilter(GreaterThanOrEqual, "id", int64(0))})
	assert.NoError(t, err)
	// same record comes back untouched
	assert.Equal(t, rec, out)
}

func buildInt64Record(values []int64) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil)
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, nil)
	arr := b.NewArray()
	defer arr.Release()
	return array.NewRecord(schema, []arrow.Array{arr}, int64(len(values)))
}

func TestApplyFilterExpressionDisjunction(t *testing.T) {
	rec := buildInt64Record([]int64{1, 2, 3, 4, 5})
	defer rec.Release()

	expr := NewOr(
		NewComparison(Equal, "id", int64(1)),
		NewComparison(Equal, "id", int64(4)),
	)
	bound, err := expr.Bind(rec.Schema())
	assert.NoError(t, err)

	out, err := ApplyFilterExpression(rec, bound)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, out.Column(0).(*array.Int64).Int64Values())
}

func TestApplyFilterExpressionNested(t *testing.T) {
	rec := buildInt64Record([]int64{1, 2, 3, 4, 5})
	defer rec.Release()

	// (id > 1) and (id == 2 or id == 5)
	expr := NewAnd(
		NewComparison(GreaterThan, "id", int64(1)),
		NewOr(
			NewComparison(Equal, "id", int64(2)),
			NewComparison(Equal, "id", int64(5)),
		),
	)
	bound, err := expr.Bind(rec.Schema())
	assert.NoError(t, err)

	out, err := ApplyFilterExpression(rec, bound)
	assert.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, out.Column(0).(*array.Int64).Int64Values())
}

func TestApplyFilterExpressionLiteral(t *testing.T) {
	rec := buildInt64Record([]int64{1, 2})
	defer rec.Release()

	out, err := ApplyFilterExpression(rec, True())
	assert.NoError(t, err)
	assert.Equal(t, rec, out)

	out, err = ApplyFilterExpression(rec, NewLiteral(false))
	assert.NoError(t, err)
	assert.EqualValues(t, 0, out.NumRows())
}

func TestApplyFilterExpressionRejectsUnbound(t *testing.T) {
	rec := buildInt64Record([]int64{1})
	defer rec.Release()

	_, err := ApplyFilterExpression(rec, NewComparison(Equal, "id", int64(1)))
	assert.Error(t, err)
}
