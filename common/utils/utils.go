package utils

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
)

// FindFieldIndex resolves name to exactly one field index of schema.
func FindFieldIndex(schema *arrow.Schema, name string) (int, error) {
	indices := schema.FieldIndices(name)
	switch len(indices) {
	case 0:
		return -1, errors.Wrap(lakeerr.ErrFieldNotFound, name)
	case 1:
		return indices[0], nil
	default:
		return -1, errors.Wrap(lakeerr.ErrAmbiguousField, name)
	}
}

// ProjectSchema builds a schema holding only the named columns, in the
// order given. Every name must resolve to exactly one field.
func ProjectSchema(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(columns))
	for _, column := range columns {
		idx, err := FindFieldIndex(schema, column)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Field(idx))
	}
	metadata := schema.Metadata()
	return arrow.NewSchema(fields, &metadata), nil
}

// UniqueUnion appends the extra names to base, keeping first-seen order
// and dropping duplicates.
func UniqueUnion(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, lists := range [][]string{base, extra} {
		for _, name := range lists {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
