package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FolderType marks non-leaf rows in the type column.
const FolderType = "folder"

// File is a node in a user's tree. Folders and uploaded files share the table.
type File struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Path         string    `gorm:"type:varchar(1000);not null" json:"path"`
	Size         int64     `gorm:"not null;default:0" json:"size"`
	Type         string    `gorm:"type:varchar(100);not null" json:"type"`
	FileURL      string    `gorm:"column:file_url;type:varchar(1000)" json:"fileUrl"`
	ThumbnailURL *string   `gorm:"column:thumbnail_url;type:varchar(1000)" json:"thumbnailUrl"`
	UserID       string    `gorm:"type:varchar(36);not null;index:idx_files_user_parent,priority:1" json:"userId"`
	ParentID     *string   `gorm:"type:varchar(36);index:idx_files_user_parent,priority:2" json:"parentId"`
	IsFolder     bool      `gorm:"not null;default:false" json:"isFolder"`
	IsFav        bool      `gorm:"not null;default:false" json:"isFav"`
	IsTrash      bool      `gorm:"not null;default:false;index" json:"isTrash"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (f *File) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
