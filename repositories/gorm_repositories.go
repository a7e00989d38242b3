package repositories

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}

type GormRepositories struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewGormRepositories(db *gorm.DB, redisClient *redis.Client) *GormRepositories {
	return &GormRepositories{db: db, redis: redisClient}
}

func (r *GormRepositories) BuildContainer() Container {
	c := Container{
		TxManager:  NewGormTxManager(r.db),
		Users:      NewGormUserRepository(r.db),
		Files:      NewGormFileRepository(r.db),
		Newsletter: NewGormNewsletterRepository(r.db),
	}
	if r.redis != nil {
		c.Tokens = NewRedisTokenBlocklist(r.redis)
	} else {
		c.Tokens = NewMemoryTokenBlocklist()
	}
	return c
}

func useTx(ctx context.Context, db *gorm.DB, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
