package fs

import (
	"net/url"

	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
)

type Factory struct{}

func NewFsFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(t Type) Fs {
	switch t {
	case InMemory:
		return NewMemoryFs()
	case Local:
		return NewLocalFs()
	default:
		panic("unknown fs type")
	}
}

// BuildFileSystem resolves a dataset URI to a filesystem.
// Supported schemes: file, memory, s3 (and its alias minio).
func BuildFileSystem(uri string) (Fs, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(lakeerr.ErrInvalidPath, uri)
	}
	switch parsed.Scheme {
	case "file", "":
		return NewLocalFs(), nil
	case "memory":
		return NewMemoryFs(), nil
	case "s3", "minio":
		bucket := parsed.Path
		if len(bucket) > 0 && bucket[0] == '/' {
			bucket = bucket[1:]
		}
		return NewMinioFs(parsed.Host, bucket, parsed.Query().Get("ssl") == "true")
	default:
		return nil, errors.Wrapf(lakeerr.ErrInvalidPath, "unknown scheme %q", parsed.Scheme)
	}
}
