package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/metrics"
	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadOptions carries the storage settings the upload path needs.
type UploadOptions struct {
	RootFolder    string
	MaxUploadSize int64
	Thumbnail     thumbnailOptions
}

type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	ParentID    *string
}

type FileService interface {
	ListFiles(ctx context.Context, userID string, parentID *string) ([]models.File, error)
	ListStarred(ctx context.Context, userID string) ([]models.File, error)
	ListTrashed(ctx context.Context, userID string) ([]models.File, error)
	Upload(ctx context.Context, userID string, in UploadInput) (models.File, error)
	// MaxUploadSize is the per-file byte limit; 0 means unlimited.
	MaxUploadSize() int64
}

type fileService struct {
	files repositories.FileRepository
	store storage.ObjectStore
	opts  UploadOptions
}

func NewFileService(files repositories.FileRepository, store storage.ObjectStore, opts UploadOptions) FileService {
	return &fileService{files: files, store: store, opts: opts}
}

func (s *fileService) ListFiles(ctx context.Context, userID string, parentID *string) ([]models.File, error) {
	list, err := s.files.ListByParent(ctx, nil, userID, normalizeParentID(parentID))
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "Failed to fetch files", err)
	}
	if list == nil {
		list = []models.File{}
	}
	return list, nil
}

func (s *fileService) ListStarred(ctx context.Context, userID string) ([]models.File, error) {
	return s.listByFlag(ctx, userID, repositories.FlagStarred)
}

func (s *fileService) ListTrashed(ctx context.Context, userID string) ([]models.File, error) {
	return s.listByFlag(ctx, userID, repositories.FlagTrashed)
}

func (s *fileService) listByFlag(ctx context.Context, userID string, flag repositories.FileFlag) ([]models.File, error) {
	list, err := s.files.ListByFlag(ctx, nil, userID, flag)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "Failed to fetch files", err)
	}
	if list == nil {
		list = []models.File{}
	}
	return list, nil
}

func (s *fileService) userFolder(userID string) string {
	return path.Join(s.opts.RootFolder, userID)
}

func (s *fileService) MaxUploadSize() int64 {
	return s.opts.MaxUploadSize
}

// readBody buffers the upload, enforcing the size limit when one is set.
func (s *fileService) readBody(in UploadInput) ([]byte, error) {
	if s.opts.MaxUploadSize > 0 && in.Size > s.opts.MaxUploadSize {
		return nil, s.tooLarge()
	}
	reader := in.Body
	if s.opts.MaxUploadSize > 0 {
		reader = io.LimitReader(in.Body, s.opts.MaxUploadSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, newAppError(http.StatusBadRequest, "No file uploaded", err)
	}
	if s.opts.MaxUploadSize > 0 && int64(len(data)) > s.opts.MaxUploadSize {
		return nil, s.tooLarge()
	}
	return data, nil
}

func (s *fileService) tooLarge() *AppError {
	return newAppErrorWithData(http.StatusBadRequest, "File too large", map[string]int64{"maxSize": s.opts.MaxUploadSize}, nil)
}

func (s *fileService) Upload(ctx context.Context, userID string, in UploadInput) (models.File, error) {
	if in.Body == nil || in.FileName == "" {
		return models.File{}, newAppError(http.StatusBadRequest, "No file uploaded", nil)
	}
	parentID := normalizeParentID(in.ParentID)
	if parentID != nil {
		if _, err := s.files.GetFolderByIDAndUser(ctx, nil, *parentID, userID); err != nil {
			if isNotFound(err) {
				return models.File{}, newAppError(http.StatusNotFound, "Parent folder not found", nil)
			}
			return models.File{}, newAppError(http.StatusInternalServerError, "Upload failed", err)
		}
	}

	data, err := s.readBody(in)
	if err != nil {
		return models.File{}, err
	}

	contentType := resolveContentType(in.ContentType, in.FileName)

	objectName := fmt.Sprintf("%s-%s", uuid.NewString(), storage.SanitizeName(in.FileName))
	result, err := s.store.Upload(ctx, storage.UploadInput{
		Folder:      s.userFolder(userID),
		FileName:    objectName,
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Upload failed", err)
	}
	metrics.RecordUpload(int64(len(data)))

	file := models.File{
		Name:         in.FileName,
		Path:         result.FilePath,
		Size:         int64(len(data)),
		Type:         contentType,
		FileURL:      result.URL,
		ThumbnailURL: s.uploadThumbnail(ctx, userID, objectName, contentType, data),
		UserID:       userID,
		ParentID:     parentID,
		IsFolder:     false,
	}
	if err := s.files.Create(ctx, nil, &file); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Upload failed", err)
	}
	return file, nil
}

// uploadThumbnail returns nil when no thumbnail could be produced.
func (s *fileService) uploadThumbnail(ctx context.Context, userID, objectName, contentType string, data []byte) *string {
	if !isImageContentType(contentType) || s.opts.Thumbnail.Width <= 0 || s.opts.Thumbnail.Height <= 0 {
		return nil
	}
	thumb, err := generateThumbnail(data, s.opts.Thumbnail)
	if err != nil {
		logger.Warn("thumbnail generation failed", zap.String("object", objectName), zap.Error(err))
		return nil
	}
	result, err := s.store.Upload(ctx, storage.UploadInput{
		Folder:      path.Join(s.userFolder(userID), thumbFolder),
		FileName:    thumbnailName(objectName),
		Body:        bytes.NewReader(thumb),
		Size:        int64(len(thumb)),
		ContentType: "image/jpeg",
	})
	if err != nil {
		logger.Warn("thumbnail upload failed", zap.String("object", objectName), zap.Error(err))
		return nil
	}
	return &result.URL
}
