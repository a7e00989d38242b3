package repositories

import (
	"context"

	"github.com/binay-das/cloudify/models"

	"gorm.io/gorm"
)

type GormNewsletterRepository struct {
	db *gorm.DB
}

func NewGormNewsletterRepository(db *gorm.DB) *GormNewsletterRepository {
	return &GormNewsletterRepository{db: db}
}

func (r *GormNewsletterRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NewsletterSubscription{}).Where("email = ?", email).Count(&count).Error
	return count, err
}

// Create returns gorm.ErrDuplicatedKey when the email is already subscribed.
func (r *GormNewsletterRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.NewsletterSubscription) error {
	return useTx(ctx, r.db, tx).Create(entry).Error
}
