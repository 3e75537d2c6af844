// Package storage 文件存储：本地磁盘或 MinIO 对象存储
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound 文件不存在
var ErrObjectNotFound = errors.New("stored object not found")

// Storage 文件存储协作者。Save 返回的路径即为之后 Open/Delete 的引用；
// Delete 对不存在的文件返回 nil。
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
