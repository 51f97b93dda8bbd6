package filter

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/parquet/metadata"
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
)

// ConstantFilter compares one column against a constant value.
type ConstantFilter struct {
	comparisonType ComparisonType
	columnName     string
	value          interface{}
}

var _ Filter = (*ConstantFilter)(nil)

func NewConstantFilter(comparisonType ComparisonType, columnName string, value interface{}) *ConstantFilter {
	return &ConstantFilter{
		comparisonType: comparisonType,
		columnName:     columnName,
		value:          value,
	}
}

func (f *ConstantFilter) Type() FilterType {
	return Constant
}

func (f *ConstantFilter) GetColumnName() string {
	return f.columnName
}

func (f *ConstantFilter) CheckDataType(dataType arrow.DataType) error {
	var ok bool
	switch dataType.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		_, ok = toInt64(f.value)
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		_, ok = toUint64(f.value)
	case arrow.FLOAT32, arrow.FLOAT64:
		_, ok = toFloat64(f.value)
	case arrow.STRING:
		_, ok = f.value.(string)
	case arrow.BOOL:
		_, ok = f.value.(bool)
	default:
		return errors.Wrapf(lakeerr.ErrUnsupportedType, "cannot filter column %s of type %s", f.columnName, dataType)
	}
	if !ok {
		return errors.Wrapf(lakeerr.ErrUnsupportedType, "value %v is not comparable to column %s of type %s", f.value, f.columnName, dataType)
	}
	return nil
}

// CheckStatistics returns true when the row group's min/max prove that no
// row can satisfy the predicate.
func (f *ConstantFilter) CheckStatistics(stats metadata.TypedStatistics) bool {
	if stats == nil || !stats.HasMinMax() {
		return false
	}
	switch s := stats.(type) {
	case *metadata.Int32Statistics:
		if v, ok := toInt64(f.value); ok {
			return canSkip(f.comparisonType, int64(s.Min()), int64(s.Max()), v)
		}
	case *metadata.Int64Statistics:
		if v, ok := toInt64(f.value); ok {
			return canSkip(f.comparisonType, s.Min(), s.Max(), v)
		}
	case *metadata.Float32Statistics:
		if v, ok := toFloat64(f.value); ok {
			return canSkip(f.comparisonType, float64(s.Min()), float64(s.Max()), v)
		}
	case *metadata.Float64Statistics:
		if v, ok := toFloat64(f.value); ok {
			return canSkip(f.comparisonType, s.Min(), s.Max(), v)
		}
	case *metadata.ByteArrayStatistics:
		if v, ok := f.value.(string); ok {
			return canSkip(f.comparisonType, string(s.Min()), string(s.Max()), v)
		}
	}
	return false
}

// Apply clears the bits of rows that do not satisfy the predicate. Null
// rows never satisfy it.
func (f *ConstantFilter) Apply(colData arrow.Array, filterBitSet *bitset.BitSet) {
	switch arr := colData.(type) {
	case *array.Int8:
		if v, ok := toInt64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, int64(arr.Value(i)), v) })
		}
	case *array.Int16:
		if v, ok := toInt64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, int64(arr.Value(i)), v) })
		}
	case *array.Int32:
		if v, ok := toInt64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, int64(arr.Value(i)), v) })
		}
	case *array.Int64:
		if v, ok := toInt64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, arr.Value(i), v) })
		}
	case *array.Uint8:
		if v, ok := toUint64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, uint64(arr.Value(i)), v) })
		}
	case *array.Uint16:
		if v, ok := toUint64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, uint64(arr.Value(i)), v) })
		}
	case *array.Uint32:
		if v, ok := toUint64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, uint64(arr.Value(i)), v) })
		}
	case *array.Uint64:
		if v, ok := toUint64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, arr.Value(i), v) })
		}
	case *array.Float32:
		if v, ok := toFloat64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, float64(arr.Value(i)), v) })
		}
	case *array.Float64:
		if v, ok := toFloat64(f.value); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, arr.Value(i), v) })
		}
	case *array.String:
		if v, ok := f.value.(string); ok {
			applyTyped(arr, filterBitSet, func(i int) bool { return compare(f.comparisonType, arr.Value(i), v) })
		}
	case *array.Boolean:
		if v, ok := f.value.(bool); ok {
			applyTyped(arr, filterBitSet, func(i int) bool {
				match := arr.Value(i) == v
				if f.comparisonType == NotEqual {
					return !match
				}
				return match
			})
		}
	}
}

func applyTyped(arr arrow.Array, bs *bitset.BitSet, match func(i int) bool) {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) || !match(i) {
			bs.Clear(uint(i))
		}
	}
}

type ordered interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64 | ~string
}

func compare[T ordered](op ComparisonType, a, b T) bool {
	switch op {
	case Equal:
		return a == b
	case NotEqual:
		return a != b
	case LessThan:
		return a < b
	case LessThanOrEqual:
		return a <= b
	case GreaterThan:
		return a > b
	case GreaterThanOrEqual:
		return a >= b
	default:
		return false
	}
}

func canSkip[T ordered](op ComparisonType, min, max, v T) bool {
	switch op {
	case Equal:
		return v < min || v > max
	case NotEqual:
		return min == v && max == v
	case LessThan:
		return min >= v
	case LessThanOrEqual:
		return min > v
	case GreaterThan:
		return max <= v
	case GreaterThanOrEqual:
		return max < v
	default:
		return false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	default:
		return 0, false
	}
}

func toUint64(v interface{}) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case int:
		if x >= 0 {
			return uint64(x), true
		}
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}
