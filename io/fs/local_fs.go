package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arclake-io/arclake/io/fs/file"
)

var _ Fs = (*LocalFs)(nil)

type LocalFs struct{}

func NewLocalFs() *LocalFs {
	return &LocalFs{}
}

func (l *LocalFs) OpenFile(path string) (file.File, error) {
	open, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	return file.NewLocalFile(open), nil
}

func (l *LocalFs) Rename(src string, dst string) error {
	return os.Rename(src, dst)
}

func (l *LocalFs) DeleteFile(path string) error {
	return os.Remove(path)
}

func (l *LocalFs) CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func (l *LocalFs) List(prefix string) ([]FileEntry, error) {
	var entries []FileEntry
	dir := prefix
	if info, err := os.Stat(prefix); err != nil || !info.IsDir() {
		dir = filepath.Dir(prefix)
	}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasPrefix(path, prefix) {
			entries = append(entries, FileEntry{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *LocalFs) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (l *LocalFs) Exist(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
