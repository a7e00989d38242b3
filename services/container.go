package services

import (
	"context"
	"time"

	"github.com/binay-das/cloudify/config"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/storage"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Container struct {
	Auth       AuthService
	Folder     FolderService
	File       FileService
	Lifecycle  LifecycleService
	Newsletter NewsletterService
	Sweeper    *TrashSweeper
}

func NewContainer(repos repositories.Container, store storage.ObjectStore, cfg *config.Config) *Container {
	uploadOpts := UploadOptions{
		RootFolder:    cfg.Storage.RootFolder,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		Thumbnail: thumbnailOptions{
			Width:   cfg.Storage.ThumbWidth,
			Height:  cfg.Storage.ThumbHeight,
			Quality: cfg.Storage.ThumbQuality,
		},
	}
	tokenOpts := TokenOptions{
		Secret: cfg.JWT.Secret,
		TTL:    time.Duration(cfg.JWT.ExpireHours) * time.Hour,
	}
	retention := time.Duration(cfg.Trash.RetentionDays) * 24 * time.Hour
	sweepEvery := time.Duration(cfg.Trash.SweepIntervalSec) * time.Second

	return &Container{
		Auth:       NewAuthService(repos.TxManager, repos.Users, repos.Tokens, tokenOpts),
		Folder:     NewFolderService(repos.Files),
		File:       NewFileService(repos.Files, store, uploadOpts),
		Lifecycle:  NewLifecycleService(repos.TxManager, repos.Files, store, cfg.Storage.RootFolder),
		Newsletter: NewNewsletterService(repos.Newsletter),
		Sweeper:    NewTrashSweeper(repos.Files, store, cfg.Storage.RootFolder, retention, sweepEvery),
	}
}
