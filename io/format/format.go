package format

import "github.com/apache/arrow/go/v12/arrow"

// Reader yields records from one file. Read returns io.EOF when the
// file is exhausted.
type Reader interface {
	Read() (arrow.Record, error)
	Close() error
}

type Writer interface {
	Write(record arrow.Record) error
	Count() int64
	Close() error
}
