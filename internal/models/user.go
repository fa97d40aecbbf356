package models

import "gorm.io/gorm"

// Role defines the permission level of a user account.
type Role string

const (
	RoleSuperAdmin Role = "superadmin" // can manage users and all content
	RoleAdmin      Role = "admin"      // can manage folders and documents
	RoleMember     Role = "user"       // can search and upload
)

// User represents a portal account.
type User struct {
	gorm.Model

	Username   string `gorm:"unique;not null;size:255"`
	Email      string `gorm:"uniqueIndex;not null;size:255"`
	Password   string `gorm:"size:255" json:"-"` // bcrypt hash, never serialized
	Role       Role   `gorm:"type:varchar(20);default:'user';not null"`
	Department string `gorm:"size:100"`
	Active     bool   `gorm:"default:true;not null"`
}

func (User) TableName() string {
	return "users"
}

// CanManageContent reports whether the role may delete folders and documents.
func (r Role) CanManageContent() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
