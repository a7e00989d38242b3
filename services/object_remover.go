package services

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/storage"

	"go.uber.org/zap"
)

// deriveObjectName picks the object name out of a file URL, falling back to
// the last segment of the stored path.
func deriveObjectName(fileURL, filePath string) string {
	if fileURL != "" {
		withoutQuery := strings.SplitN(fileURL, "?", 2)[0]
		if name := lastSegment(withoutQuery); name != "" {
			if unescaped, err := url.PathUnescape(name); err == nil {
				return unescaped
			}
			return name
		}
	}
	if filePath != "" {
		return lastSegment(filePath)
	}
	return ""
}

func lastSegment(s string) string {
	return s[strings.LastIndex(s, "/")+1:]
}

// objectRemover deletes backing objects on a best-effort basis. Failures are
// logged and never returned.
type objectRemover struct {
	store      storage.ObjectStore
	rootFolder string
}

// objectFolder is the folder holding the file's object: the directory of the
// stored key, or the owner's folder under the root when the row has none.
func (r objectRemover) objectFolder(file models.File) string {
	if dir := path.Dir(strings.TrimPrefix(file.Path, "/")); dir != "." && dir != "" {
		return dir
	}
	if file.UserID == "" {
		return ""
	}
	return path.Join(r.rootFolder, file.UserID)
}

func (r objectRemover) remove(ctx context.Context, file models.File) {
	if file.IsFolder || r.store == nil {
		return
	}
	folder := r.objectFolder(file)
	if folder == "" {
		logger.Warn("object folder unknown, skipping object removal",
			zap.String("file_id", file.ID), zap.String("path", file.Path))
		return
	}
	r.removeNamed(ctx, file.ID, folder, deriveObjectName(file.FileURL, file.Path))
	if file.ThumbnailURL != nil && *file.ThumbnailURL != "" {
		r.removeNamed(ctx, file.ID, path.Join(folder, thumbFolder), deriveObjectName(*file.ThumbnailURL, ""))
	}
}

func (r objectRemover) removeNamed(ctx context.Context, fileID, folder, name string) {
	if name == "" {
		return
	}

	target := storage.ObjectKey(folder, name)
	matches, err := r.store.FindByName(ctx, folder, name)
	switch {
	case err != nil:
		logger.Warn("object lookup failed, deleting by derived key",
			zap.String("file_id", fileID), zap.String("object", target), zap.Error(err))
	case len(matches) > 0:
		target = matches[0].ObjectID
	}

	if err := r.store.Delete(ctx, target); err != nil {
		logger.Warn("object delete failed",
			zap.String("file_id", fileID), zap.String("object", target), zap.Error(err))
	}
}
