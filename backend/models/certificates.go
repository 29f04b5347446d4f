package models

import (
	"time"

	"gorm.io/gorm"
)

// BatchCertificate represents an issued completion certificate for one user
// of a batch.
type BatchCertificate struct {
	gorm.Model
	BatchID  uint   `gorm:"uniqueIndex:idx_batch_user_cert;not null"`
	UserID   uint   `gorm:"uniqueIndex:idx_batch_user_cert;not null"`
	Serial   string `gorm:"unique"`
	IssuedAt time.Time
}
