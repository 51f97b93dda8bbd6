package fs

import (
	"github.com/arclake-io/arclake/io/fs/file"
)

// Fs abstracts the storage a dataset's files live on.
type Fs interface {
	OpenFile(path string) (file.File, error)
	Rename(src string, dst string) error
	DeleteFile(path string) error
	CreateDir(path string) error
	List(prefix string) ([]FileEntry, error)
	ReadFile(path string) ([]byte, error)
	Exist(path string) (bool, error)
}

type FileEntry struct {
	Path string
}

type Type int8

const (
	InMemory Type = iota
	Local
	S3
)
