package fs

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	lakeerr "github.com/arclake-io/arclake/common/errors"
	"github.com/arclake-io/arclake/common/log"
	"github.com/arclake-io/arclake/io/fs/file"
)

var _ Fs = (*MinioFs)(nil)

type MinioFs struct {
	client     *minio.Client
	bucketName string
}

// NewMinioFs connects to an S3-compatible endpoint. Credentials come
// from ARCLAKE_ACCESS_KEY / ARCLAKE_SECRET_KEY.
func NewMinioFs(endpoint, bucketName string, useSSL bool) (*MinioFs, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("ARCLAKE_ACCESS_KEY"), os.Getenv("ARCLAKE_SECRET_KEY"), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	exist, err := client.BucketExists(context.TODO(), bucketName)
	if err != nil {
		return nil, err
	}
	if !exist {
		if err = client.MakeBucket(context.TODO(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinioFs{client: client, bucketName: bucketName}, nil
}

func (fs *MinioFs) OpenFile(path string) (file.File, error) {
	return file.NewMinioFile(fs.client, path, fs.bucketName)
}

func (fs *MinioFs) Rename(src string, dst string) error {
	_, err := fs.client.CopyObject(context.TODO(),
		minio.CopyDestOptions{Bucket: fs.bucketName, Object: dst},
		minio.CopySrcOptions{Bucket: fs.bucketName, Object: src})
	if err != nil {
		return err
	}
	if err = fs.client.RemoveObject(context.TODO(), fs.bucketName, src, minio.RemoveObjectOptions{}); err != nil {
		log.Warn("failed to remove source object", log.String("source", src), log.Err(err))
	}
	return nil
}

func (fs *MinioFs) DeleteFile(path string) error {
	return fs.client.RemoveObject(context.TODO(), fs.bucketName, path, minio.RemoveObjectOptions{})
}

func (fs *MinioFs) CreateDir(path string) error {
	return nil
}

func (fs *MinioFs) List(prefix string) ([]FileEntry, error) {
	entries := make([]FileEntry, 0)
	for info := range fs.client.ListObjects(context.TODO(), fs.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, info.Err
		}
		entries = append(entries, FileEntry{Path: info.Key})
	}
	return entries, nil
}

func (fs *MinioFs) ReadFile(path string) ([]byte, error) {
	obj, err := fs.client.GetObject(context.TODO(), fs.bucketName, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func (fs *MinioFs) Exist(path string) (bool, error) {
	_, err := fs.client.StatObject(context.TODO(), fs.bucketName, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExtractBucketName splits "bucket/rest" object paths.
func ExtractBucketName(path string) (string, string, error) {
	p := strings.Index(path, "/")
	if p == -1 {
		return "", "", errors.Wrap(lakeerr.ErrInvalidPath, path)
	}
	return path[:p], path[p+1:], nil
}
