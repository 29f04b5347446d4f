package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, professor, admin
	FullName     string
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

// Enrollment records that a user is enrolled in a course and therefore
// eligible for assignment to that course's batches.
type Enrollment struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	CourseID uint   `gorm:"index;not null"`
	Status   string `gorm:"default:enrolled"` // enrolled, completed, withdrawn
}
