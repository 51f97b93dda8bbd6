package dataset

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/common/utils"
)

// RecordBatchProjector rearranges record columns to a target schema.
type RecordBatchProjector struct {
	schema *arrow.Schema
}

func NewRecordBatchProjector(schema *arrow.Schema) *RecordBatchProjector {
	return &RecordBatchProjector{schema: schema}
}

func (p *RecordBatchProjector) Schema() *arrow.Schema {
	return p.schema
}

// Project returns rec with exactly the target schema's columns, in the
// target order. Records already matching the schema pass through.
func (p *RecordBatchProjector) Project(rec arrow.Record) (arrow.Record, error) {
	if rec.Schema().Equal(p.schema) {
		return rec, nil
	}
	cols := make([]arrow.Array, 0, len(p.schema.Fields()))
	for _, field := range p.schema.Fields() {
		idx, err := utils.FindFieldIndex(rec.Schema(), field.Name)
		if err != nil {
			return nil, errors.Wrap(lakeerr.ErrColumnNotExist, field.Name)
		}
		col := rec.Column(idx)
		if !arrow.TypeEqual(col.DataType(), field.Type) {
			return nil, errors.Wrapf(lakeerr.ErrSchemaNotMatch, "column %s has type %s, want %s", field.Name, col.DataType(), field.Type)
		}
		cols = append(cols, col)
	}
	return array.NewRecord(p.schema, cols, rec.NumRows()), nil
}
