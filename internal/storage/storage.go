// Package storage archives the files uploaded with each check in an S3-compatible store.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"time"
)

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions describe an upload. Size may be -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for report archives.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object whose key starts with prefix and returns how many went.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// ReportPrefix is the key prefix holding every object of one report.
func ReportPrefix(reportID string) string {
	return "reports/" + reportID + "/"
}

// MainKey is where the main document of a report is archived.
func MainKey(reportID, name string) string {
	return ReportPrefix(reportID) + "main/" + path.Base(name)
}

// FolderKey is where the i-th folder file of a report is archived. The index keeps
// duplicate names apart.
func FolderKey(reportID string, i int, name string) string {
	return ReportPrefix(reportID) + "folder/" + strconv.Itoa(i) + "-" + path.Base(name)
}
