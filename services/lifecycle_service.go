package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/metrics"
	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const emptyTrashConcurrency = 16

type ToggleResult struct {
	File    models.File
	Message string
}

type EmptyTrashResult struct {
	Count   int64
	Message string
}

type LifecycleService interface {
	ToggleTrash(ctx context.Context, userID string, fileID string) (ToggleResult, error)
	ToggleStar(ctx context.Context, userID string, fileID string) (ToggleResult, error)
	DeleteFile(ctx context.Context, userID string, fileID string) (models.File, error)
	EmptyTrash(ctx context.Context, userID string) (EmptyTrashResult, error)
}

type lifecycleService struct {
	txManager TxManager
	files     repositories.FileRepository
	remover   objectRemover
}

func NewLifecycleService(txManager TxManager, files repositories.FileRepository, store storage.ObjectStore, rootFolder string) LifecycleService {
	return &lifecycleService{
		txManager: txManager,
		files:     files,
		remover:   objectRemover{store: store, rootFolder: rootFolder},
	}
}

func (s *lifecycleService) ToggleTrash(ctx context.Context, userID string, fileID string) (ToggleResult, error) {
	file, err := s.toggle(ctx, userID, fileID, "is_trash", func(f *models.File) bool {
		f.IsTrash = !f.IsTrash
		return f.IsTrash
	}, "Failed to update file trash status")
	if err != nil {
		return ToggleResult{}, err
	}

	message := "File restored successfully"
	if file.IsTrash {
		message = "File moved to trash successfully"
	}
	return ToggleResult{File: file, Message: message}, nil
}

func (s *lifecycleService) ToggleStar(ctx context.Context, userID string, fileID string) (ToggleResult, error) {
	file, err := s.toggle(ctx, userID, fileID, "is_fav", func(f *models.File) bool {
		f.IsFav = !f.IsFav
		return f.IsFav
	}, "Failed to update file star status")
	if err != nil {
		return ToggleResult{}, err
	}

	message := "File removed from starred"
	if file.IsFav {
		message = "File added to starred"
	}
	return ToggleResult{File: file, Message: message}, nil
}

func (s *lifecycleService) toggle(
	ctx context.Context,
	userID string,
	fileID string,
	column string,
	flip func(*models.File) bool,
	failure string,
) (models.File, error) {
	if fileID == "" {
		return models.File{}, newAppError(http.StatusBadRequest, "File ID is required", nil)
	}

	var file models.File
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.files.GetByIDAndUser(ctx, tx, fileID, userID)
		if err != nil {
			if isNotFound(err) {
				return newAppError(http.StatusNotFound, "File not found", nil)
			}
			return newAppError(http.StatusInternalServerError, failure, err)
		}

		next := flip(&current)
		if err := s.files.UpdateByIDAndUser(ctx, tx, fileID, userID, map[string]interface{}{column: next}); err != nil {
			return newAppError(http.StatusInternalServerError, failure, err)
		}
		updated, err := s.files.GetByIDAndUser(ctx, tx, fileID, userID)
		if err != nil {
			return newAppError(http.StatusInternalServerError, failure, err)
		}
		file = updated
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*AppError); ok {
			return models.File{}, appErr
		}
		return models.File{}, newAppError(http.StatusInternalServerError, failure, err)
	}
	return file, nil
}

func (s *lifecycleService) DeleteFile(ctx context.Context, userID string, fileID string) (models.File, error) {
	if fileID == "" {
		return models.File{}, newAppError(http.StatusBadRequest, "File ID is required", nil)
	}

	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if isNotFound(err) {
			return models.File{}, newAppError(http.StatusNotFound, "File not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to delete file", err)
	}

	// Once objects start going the row delete must follow, even if the caller leaves.
	ctx = context.WithoutCancel(ctx)
	s.remover.remove(ctx, file)

	if _, err := s.files.DeleteByIDAndUser(ctx, nil, fileID, userID); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to delete file", err)
	}
	logger.Info("file deleted", zap.String("user_id", userID), zap.String("file_id", fileID))
	return file, nil
}

// EmptyTrash removes every trashed row for the user. Object deletions run in
// parallel and all of them settle before the single bulk delete.
func (s *lifecycleService) EmptyTrash(ctx context.Context, userID string) (EmptyTrashResult, error) {
	trashed, err := s.files.ListTrashed(ctx, nil, userID)
	if err != nil {
		return EmptyTrashResult{}, newAppError(http.StatusInternalServerError, "Failed to empty trash", err)
	}
	if len(trashed) == 0 {
		return EmptyTrashResult{Count: 0, Message: "No files in trash"}, nil
	}
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(emptyTrashConcurrency)
	for _, file := range trashed {
		if file.IsFolder {
			continue
		}
		file := file
		g.Go(func() error {
			s.remover.remove(ctx, file)
			return nil
		})
	}
	_ = g.Wait()

	count, err := s.files.DeleteTrashed(ctx, nil, userID)
	if err != nil {
		return EmptyTrashResult{}, newAppError(http.StatusInternalServerError, "Failed to empty trash", err)
	}
	metrics.RecordTrashPurged(count)
	logger.Info("trash emptied", zap.String("user_id", userID), zap.Int64("count", count))

	return EmptyTrashResult{
		Count:   count,
		Message: fmt.Sprintf("Successfully deleted %d files from trash", count),
	}, nil
}
