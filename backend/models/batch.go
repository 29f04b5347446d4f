package models

import (
	"time"

	"gorm.io/gorm"
)

// Batch is a cohort of users assigned to one course, one professor and a
// date range.
type Batch struct {
	gorm.Model
	Name            string `gorm:"not null"`
	CourseID        uint   `gorm:"index;not null"`
	ProfessorID     uint
	StartDate       time.Time
	EndDate         time.Time
	Users           []User `gorm:"many2many:batch_users"`
	Quizzes         string // comma-separated quiz IDs
	Events          string // comma-separated event IDs
	MarkedCompleted bool   `gorm:"default:false"`
}

// BatchCompletionMark is one admin-set completion flag for a single curriculum
// node. Marks are independent per kind: a module mark implies nothing about
// its lessons or topics.
type BatchCompletionMark struct {
	gorm.Model
	BatchID uint   `gorm:"uniqueIndex:idx_batch_node;not null"`
	Kind    string `gorm:"uniqueIndex:idx_batch_node;not null"` // module, lesson, topic
	NodeID  uint   `gorm:"uniqueIndex:idx_batch_node;not null"`
}

const (
	MarkKindModule = "module"
	MarkKindLesson = "lesson"
	MarkKindTopic  = "topic"
)
