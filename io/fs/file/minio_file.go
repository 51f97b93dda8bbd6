package file

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
)

var _ File = (*MinioFile)(nil)

// MinioFile reads straight from an object and buffers writes in memory
// until Close uploads them.
type MinioFile struct {
	*minio.Object
	writer     *MemoryFile
	client     *minio.Client
	fileName   string
	bucketName string
}

func NewMinioFile(client *minio.Client, fileName string, bucketName string) (*MinioFile, error) {
	_, err := client.StatObject(context.TODO(), bucketName, fileName, minio.StatObjectOptions{})
	if err != nil {
		eresp := minio.ToErrorResponse(err)
		if eresp.Code != "NoSuchKey" {
			return nil, err
		}
		return &MinioFile{
			writer:     NewMemoryFile(nil),
			client:     client,
			fileName:   fileName,
			bucketName: bucketName,
		}, nil
	}

	object, err := client.GetObject(context.TODO(), bucketName, fileName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return &MinioFile{
		Object:     object,
		client:     client,
		fileName:   fileName,
		bucketName: bucketName,
	}, nil
}

func (f *MinioFile) Write(p []byte) (int, error) {
	return f.writer.Write(p)
}

func (f *MinioFile) Close() error {
	if f.writer == nil {
		return f.Object.Close()
	}
	data := f.writer.Bytes()
	_, err := f.client.PutObject(context.TODO(), f.bucketName, f.fileName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}
