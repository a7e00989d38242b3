package repositories

import (
	"context"
	"time"

	"github.com/binay-das/cloudify/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	CountByEmail(ctx context.Context, email string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (models.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID string) (models.User, error)
}

// FileFlag selects one of the boolean lifecycle columns for flat listings.
type FileFlag string

const (
	FlagStarred FileFlag = "is_fav"
	FlagTrashed FileFlag = "is_trash"
)

// FileRepository scopes every query by owner. A nil parentID means the root level.
type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, fileID string, userID string) (models.File, error)
	GetFolderByIDAndUser(ctx context.Context, tx *gorm.DB, folderID string, userID string) (models.File, error)
	CountFoldersByParentAndName(ctx context.Context, tx *gorm.DB, userID string, parentID *string, name string) (int64, error)
	ListByParent(ctx context.Context, tx *gorm.DB, userID string, parentID *string) ([]models.File, error)
	ListByFlag(ctx context.Context, tx *gorm.DB, userID string, flag FileFlag) ([]models.File, error)
	UpdateByIDAndUser(ctx context.Context, tx *gorm.DB, fileID string, userID string, updates map[string]interface{}) error
	DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, fileID string, userID string) (int64, error)
	ListTrashed(ctx context.Context, tx *gorm.DB, userID string) ([]models.File, error)
	DeleteTrashed(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	// ListTrashedBefore spans all users; it backs the retention sweeper only.
	ListTrashedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]models.File, error)
}

type NewsletterRepository interface {
	CountByEmail(ctx context.Context, email string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, entry *models.NewsletterSubscription) error
}

// TokenBlocklist remembers revoked token ids until they would have expired anyway.
type TokenBlocklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Container struct {
	TxManager  TxManager
	Users      UserRepository
	Files      FileRepository
	Newsletter NewsletterRepository
	Tokens     TokenBlocklist
}
