package models

import "gorm.io/gorm"

// Course is read-only reference data from the batch administration's
// perspective; batches point at it and never mutate it.
type Course struct {
	gorm.Model
	Title       string
	Description string
	Modules     []CourseModule
	Professors  []User `gorm:"many2many:course_professors"`
}

type CourseModule struct {
	gorm.Model
	CourseID      uint
	Title         string
	SequenceOrder int
	Lessons       []Lesson `gorm:"foreignKey:ModuleID"`
}

type Lesson struct {
	gorm.Model
	ModuleID      uint
	Title         string
	SequenceOrder int
	Topics        []Topic
}

// Topic is a leaf node, no children.
type Topic struct {
	gorm.Model
	LessonID      uint
	Title         string
	SequenceOrder int
}
