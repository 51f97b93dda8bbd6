package dataset

import (
	"path"

	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/arclake-io/arclake/common/constant"
	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/common/log"
	"github.com/arclake-io/arclake/io/format"
	"github.com/arclake-io/arclake/io/format/parquet"
	"github.com/arclake-io/arclake/io/fs"
)

type WriteOptions struct {
	MaxRowsPerFile int64
}

func NewWriteOptions() *WriteOptions {
	return &WriteOptions{MaxRowsPerFile: 1024}
}

// Write drains reader into parquet files under dir, starting a new file
// whenever the current one reaches MaxRowsPerFile. It returns the
// written paths in write order; together with the schema they form a
// FileSystemDataset.
func Write(f fs.Fs, dir string, reader array.RecordReader, options *WriteOptions) ([]string, error) {
	if reader.Schema() == nil {
		return nil, lakeerr.ErrSchemaIsNil
	}
	var (
		writer format.Writer
		files  []string
	)
	// an error return must not leak a half-written file handle
	defer func() {
		if writer != nil {
			if err := writer.Close(); err != nil {
				log.Warn("failed to close parquet writer", log.String("dir", dir), log.Err(err))
			}
		}
	}()
	for reader.Next() {
		rec := reader.Record()
		if rec.NumRows() == 0 {
			continue
		}
		if writer == nil {
			filePath := path.Join(dir, uuid.New().String()+constant.ParquetDataFileSuffix)
			w, err := parquet.NewFileWriter(reader.Schema(), f, filePath)
			if err != nil {
				return nil, err
			}
			writer = w
			files = append(files, filePath)
		}
		if err := writer.Write(rec); err != nil {
			return nil, err
		}
		if writer.Count() >= options.MaxRowsPerFile {
			w := writer
			writer = nil
			if err := w.Close(); err != nil {
				return nil, err
			}
		}
	}
	if writer != nil {
		w := writer
		writer = nil
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	if err := reader.Err(); err != nil {
		return nil, errors.Wrap(err, "drain record reader")
	}
	log.Debug("wrote dataset files", log.String("dir", dir), log.Int("count", len(files)))
	return files, nil
}
