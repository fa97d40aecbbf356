package models

import "gorm.io/gorm"

// Folder is one level of the two-level containment hierarchy for documents.
// A folder with a nil ParentID is a top-level category; a folder with a
// non-nil ParentID is a subcategory. Only categories may be parents; the
// two-level shape is enforced by the folder service, not by a depth check.
type Folder struct {
	gorm.Model

	Name        string `gorm:"index:idx_folder_name_parent,unique;not null;size:200"`
	ParentID    *uint  `gorm:"index:idx_folder_name_parent,unique"`
	Parent      *Folder
	Subfolders  []Folder `gorm:"foreignKey:ParentID"`
	CreatedByID uint     `gorm:"not null"`

	Documents []Document `gorm:"foreignKey:FolderID"`
}

func (Folder) TableName() string {
	return "folders"
}

// IsCategory reports whether the folder is a top-level category.
func (f *Folder) IsCategory() bool {
	return f.ParentID == nil
}
