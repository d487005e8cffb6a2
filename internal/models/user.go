package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCandidate UserRole = "candidate"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleCandidate || r == RoleAdmin
}

// User is the local projection of an olympiad account. Identity comes from
// the JWT issued by the auth service; this table only carries what reporting
// needs (name, email, role).
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	Email    string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName string   `json:"full_name" gorm:"size:200;not null"`
	Role     UserRole `json:"role" gorm:"size:20;not null;default:'candidate'"`
	IsActive bool     `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
