// Package storage talks to the external object store holding uploaded bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/binay-das/cloudify/config"
)

type UploadInput struct {
	Folder      string
	FileName    string
	Body        io.Reader
	Size        int64
	ContentType string
}

type UploadResult struct {
	ObjectID string
	Name     string
	FilePath string
	URL      string
}

type ObjectInfo struct {
	ObjectID string
	Name     string
	Size     int64
}

// ObjectStore is the subset of object storage the file service depends on.
// ObjectID is the full object key.
type ObjectStore interface {
	Upload(ctx context.Context, in UploadInput) (UploadResult, error)
	// FindByName looks only at the direct children of folder.
	FindByName(ctx context.Context, folder, name string) ([]ObjectInfo, error)
	Delete(ctx context.Context, objectID string) error
}

// New picks the backend named in cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "minio":
		return NewMinioStore(ctx, cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// ObjectKey joins folder and name into a bucket key without a leading slash.
func ObjectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// SanitizeName keeps a name usable as the final segment of a key and URL.
func SanitizeName(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	replacer := strings.NewReplacer("?", "_", "#", "_", "%", "_")
	name = replacer.Replace(name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

// PublicURL builds the URL a browser uses to fetch key.
func PublicURL(cfg config.StorageConfig, key string) string {
	escaped := escapeKey(key)
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/" + escaped
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimRight(endpoint, "/"), cfg.Bucket, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var ErrFolderRequired = errors.New("object lookup requires a folder")

// listPrefix turns folder into a list prefix. An empty folder would scan the
// whole bucket, so it is refused.
func listPrefix(folder string) (string, error) {
	folder = strings.Trim(folder, "/")
	if folder == "" || folder == "." {
		return "", ErrFolderRequired
	}
	return folder + "/", nil
}

func matchesName(key, name string) bool {
	return path.Base(key) == name
}
