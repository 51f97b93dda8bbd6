package dataset

import (
	"io"

	"github.com/apache/arrow/go/v12/arrow"
)

// Iterator lazily yields elements. Next returns io.EOF once the sequence
// is exhausted; iterators are finite and not restartable.
type Iterator[T any] interface {
	Next() (T, error)
}

type RecordIterator = Iterator[arrow.Record]
type FragmentIterator = Iterator[Fragment]
type ScanTaskIterator = Iterator[ScanTask]

type vectorIterator[T any] struct {
	items []T
	pos   int
}

// MakeVectorIterator wraps an already materialized slice.
func MakeVectorIterator[T any](items []T) Iterator[T] {
	return &vectorIterator[T]{items: items}
}

func (it *vectorIterator[T]) Next() (T, error) {
	if it.pos >= len(it.items) {
		var zero T
		return zero, io.EOF
	}
	item := it.items[it.pos]
	it.pos++
	return item, nil
}

// CollectIterator drives it to completion and returns every element.
func CollectIterator[T any](it Iterator[T]) ([]T, error) {
	var out []T
	for {
		item, err := it.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
}
