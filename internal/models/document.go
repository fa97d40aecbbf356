package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is an uploaded PDF with its cached extraction results.
// TextContent and Keywords are computed at upload time and reused by the
// search pipeline; when either is empty the matcher recomputes and persists
// it before scoring (lazy backfill).
type Document struct {
	gorm.Model

	Title     string `gorm:"not null;size:200"`
	ObjectKey string `gorm:"not null;size:512"` // object name in the blob store
	FileURL   string `gorm:"size:1024"`

	FolderID *uint `gorm:"index"`
	Folder   *Folder

	UploadedByID uint `gorm:"not null"`

	TextContent string                      `gorm:"type:longtext"`
	Keywords    datatypes.JSONSlice[string] `gorm:"type:json"`
}

func (Document) TableName() string {
	return "documents"
}

// FolderName returns the owning folder's name, or "Uncategorized" when the
// document has no folder.
func (d *Document) FolderName() string {
	if d.Folder == nil {
		return "Uncategorized"
	}
	return d.Folder.Name
}
