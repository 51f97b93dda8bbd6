package file

import (
	"os"
)

var _ File = (*LocalFile)(nil)

type LocalFile struct {
	file *os.File
}

func NewLocalFile(f *os.File) *LocalFile {
	return &LocalFile{file: f}
}

func (l *LocalFile) Read(p []byte) (int, error) {
	return l.file.Read(p)
}

func (l *LocalFile) ReadAt(p []byte, off int64) (int, error) {
	return l.file.ReadAt(p, off)
}

func (l *LocalFile) Seek(offset int64, whence int) (int64, error) {
	return l.file.Seek(offset, whence)
}

func (l *LocalFile) Write(p []byte) (int, error) {
	return l.file.Write(p)
}

func (l *LocalFile) Close() error {
	return l.file.Close()
}
