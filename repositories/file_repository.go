package repositories

import (
	"context"
	"time"

	"github.com/binay-das/cloudify/models"

	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func scopeParent(db *gorm.DB, parentID *string) *gorm.DB {
	if parentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", *parentID)
}

func (r *GormFileRepository) Create(ctx context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(ctx, r.db, tx).Create(file).Error
}

func (r *GormFileRepository) GetByIDAndUser(ctx context.Context, tx *gorm.DB, fileID string, userID string) (models.File, error) {
	var file models.File
	err := useTx(ctx, r.db, tx).Where("id = ? AND user_id = ?", fileID, userID).First(&file).Error
	return file, err
}

func (r *GormFileRepository) GetFolderByIDAndUser(ctx context.Context, tx *gorm.DB, folderID string, userID string) (models.File, error) {
	var folder models.File
	err := useTx(ctx, r.db, tx).
		Where("id = ? AND user_id = ? AND is_folder = ?", folderID, userID, true).
		First(&folder).Error
	return folder, err
}

func (r *GormFileRepository) CountFoldersByParentAndName(ctx context.Context, tx *gorm.DB, userID string, parentID *string, name string) (int64, error) {
	db := useTx(ctx, r.db, tx).Model(&models.File{}).
		Where("user_id = ? AND name = ? AND is_folder = ?", userID, name, true)

	var count int64
	err := scopeParent(db, parentID).Count(&count).Error
	return count, err
}

func (r *GormFileRepository) ListByParent(ctx context.Context, tx *gorm.DB, userID string, parentID *string) ([]models.File, error) {
	db := useTx(ctx, r.db, tx).Model(&models.File{}).Where("user_id = ?", userID)

	files := make([]models.File, 0)
	err := scopeParent(db, parentID).Order("created_at ASC, id ASC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListByFlag(ctx context.Context, tx *gorm.DB, userID string, flag FileFlag) ([]models.File, error) {
	db := useTx(ctx, r.db, tx).Model(&models.File{}).Where("user_id = ?", userID)
	switch flag {
	case FlagStarred:
		db = db.Where("is_fav = ? AND is_trash = ?", true, false)
	default:
		db = db.Where("is_trash = ?", true)
	}

	files := make([]models.File, 0)
	err := db.Order("updated_at DESC, id ASC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) UpdateByIDAndUser(ctx context.Context, tx *gorm.DB, fileID string, userID string, updates map[string]interface{}) error {
	return useTx(ctx, r.db, tx).Model(&models.File{}).
		Where("id = ? AND user_id = ?", fileID, userID).
		Updates(updates).Error
}

func (r *GormFileRepository) DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, fileID string, userID string) (int64, error) {
	result := useTx(ctx, r.db, tx).Where("id = ? AND user_id = ?", fileID, userID).Delete(&models.File{})
	return result.RowsAffected, result.Error
}

func (r *GormFileRepository) ListTrashed(ctx context.Context, tx *gorm.DB, userID string) ([]models.File, error) {
	files := make([]models.File, 0)
	err := useTx(ctx, r.db, tx).Where("user_id = ? AND is_trash = ?", userID, true).
		Order("created_at ASC, id ASC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) DeleteTrashed(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	result := useTx(ctx, r.db, tx).Where("user_id = ? AND is_trash = ?", userID, true).Delete(&models.File{})
	return result.RowsAffected, result.Error
}

func (r *GormFileRepository) ListTrashedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]models.File, error) {
	files := make([]models.File, 0)
	err := useTx(ctx, r.db, tx).Where("is_trash = ? AND updated_at < ?", true, cutoff).
		Order("updated_at ASC, id ASC").Limit(limit).Find(&files).Error
	return files, err
}
