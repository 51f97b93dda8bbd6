package file

import (
	"errors"
	"io"
)

var errInvalid = errors.New("invalid argument")

var _ File = (*MemoryFile)(nil)

// MemoryFile is a growable in-memory byte buffer satisfying File.
type MemoryFile struct {
	b []byte
	i int
}

func NewMemoryFile(b []byte) *MemoryFile {
	return &MemoryFile{b: b}
}

func (f *MemoryFile) Read(p []byte) (int, error) {
	if f.i >= len(f.b) {
		return 0, io.EOF
	}
	n := copy(p, f.b[f.i:])
	f.i += n
	return n, nil
}

func (f *MemoryFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || int64(int(off)) < off {
		return 0, errInvalid
	}
	if off > int64(len(f.b)) {
		return 0, io.EOF
	}
	n := copy(p, f.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *MemoryFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(f.i) + offset
	case io.SeekEnd:
		abs = int64(len(f.b)) + offset
	default:
		return 0, errInvalid
	}
	if abs < 0 {
		return 0, errInvalid
	}
	f.i = int(abs)
	return abs, nil
}

func (f *MemoryFile) Write(p []byte) (int, error) {
	n, err := f.writeAt(p, int64(f.i))
	f.i += n
	return n, err
}

func (f *MemoryFile) writeAt(p []byte, off int64) (int, error) {
	if off < 0 || int64(int(off)) < off {
		return 0, errInvalid
	}
	if off > int64(len(f.b)) {
		if err := f.truncate(off); err != nil {
			return 0, err
		}
	}
	n := copy(f.b[off:], p)
	f.b = append(f.b, p[n:]...)
	return len(p), nil
}

func (f *MemoryFile) truncate(n int64) error {
	switch {
	case n < 0 || int64(int(n)) < n:
		return errInvalid
	case n <= int64(len(f.b)):
		f.b = f.b[:n]
		return nil
	default:
		f.b = append(f.b, make([]byte, int(n)-len(f.b))...)
		return nil
	}
}

func (f *MemoryFile) Close() error {
	return nil
}

func (f *MemoryFile) Bytes() []byte {
	return f.b
}
