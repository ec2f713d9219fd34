package models

import "time"

const UserTable = "lab_users"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleLaboran Role = "LABORAN"
	RoleUser    Role = "USER"
)

// Staff reports whether the role may manage inventory and act on borrowings.
func (r Role) Staff() bool { return r == RoleAdmin || r == RoleLaboran }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLaboran, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName  string `gorm:"size:255;not null" json:"displayName"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         Role   `gorm:"size:20;not null;default:'USER'" json:"role"`
	Active       bool   `gorm:"not null;default:true" json:"active"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }
