package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/repositories"

	"github.com/google/uuid"
)

const maxFolderNameLength = 255

type FolderService interface {
	CreateFolder(ctx context.Context, userID string, name string, parentID *string) (models.File, error)
}

type folderService struct {
	files repositories.FileRepository
}

func NewFolderService(files repositories.FileRepository) FolderService {
	return &folderService{files: files}
}

func folderPath(userID string) string {
	return fmt.Sprintf("/folders/%s/%s", userID, uuid.NewString())
}

// normalizeParentID treats an empty id as the root level.
func normalizeParentID(parentID *string) *string {
	if parentID == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*parentID)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *folderService) CreateFolder(ctx context.Context, userID string, name string, parentID *string) (models.File, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxFolderNameLength {
		return models.File{}, newAppError(http.StatusBadRequest, "Invalid folder name", nil)
	}
	parentID = normalizeParentID(parentID)

	count, err := s.files.CountFoldersByParentAndName(ctx, nil, userID, parentID, name)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to create folder", err)
	}
	if count > 0 {
		return models.File{}, newAppError(http.StatusBadRequest, "A folder with this name already exists in this location", nil)
	}

	if parentID != nil {
		if _, err := s.files.GetFolderByIDAndUser(ctx, nil, *parentID, userID); err != nil {
			if isNotFound(err) {
				return models.File{}, newAppError(http.StatusNotFound, "Parent folder not found", nil)
			}
			return models.File{}, newAppError(http.StatusInternalServerError, "Failed to create folder", err)
		}
	}

	folder := models.File{
		Name:     name,
		Path:     folderPath(userID),
		Type:     models.FolderType,
		FileURL:  "",
		UserID:   userID,
		ParentID: parentID,
		IsFolder: true,
	}
	if err := s.files.Create(ctx, nil, &folder); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to create folder", err)
	}
	return folder, nil
}
