package filter

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/parquet/metadata"
	"github.com/bits-and-blooms/bitset"
)

type FilterType int8

const (
	And FilterType = iota
	Or
	Constant
	Range
)

// Filter is a single-column predicate pushed down into file readers.
// CheckStatistics reports whether a whole row group can be skipped given
// its column statistics. Apply clears the bits of non-matching rows.
type Filter interface {
	CheckStatistics(metadata.TypedStatistics) bool
	Type() FilterType
	Apply(colData arrow.Array, filterBitSet *bitset.BitSet)
	CheckDataType(dataType arrow.DataType) error
	GetColumnName() string
}

type ComparisonType int8

const (
	Equal ComparisonType = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

func (c ComparisonType) String() string {
	switch c {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return "?"
	}
}
