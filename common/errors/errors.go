package errors

import "errors"

var (
	ErrFieldNotFound     = errors.New("field not found in schema")
	ErrAmbiguousField    = errors.New("field name matches more than one schema field")
	ErrInvalidBatchSize  = errors.New("batch size must be greater than 0")
	ErrUnboundExpression = errors.New("expression is not bound")
	ErrUnsupportedType   = errors.New("unsupported data type")
	ErrSchemaNotMatch    = errors.New("schema not match")
	ErrColumnNotExist    = errors.New("column not exist")
	ErrInvalidPath       = errors.New("invalid path")
	ErrSchemaIsNil       = errors.New("schema is nil")
)
