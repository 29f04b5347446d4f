// Package progress holds the batch completion model: a read-only view of a
// course's module/lesson/topic hierarchy plus the set of admin-placed
// completion marks, and the aggregation that turns both into the progress
// numbers the console renders.
package progress

import (
	"sort"

	"trainhub/backend/models"
)

// Hierarchy is an immutable traversal view over one course's curriculum.
// It is rebuilt from the stored course whenever a batch session opens.
type Hierarchy struct {
	modules []hierarchyModule
}

type hierarchyModule struct {
	id      uint
	lessons []hierarchyLesson
}

type hierarchyLesson struct {
	id     uint
	topics []uint
}

// BuildHierarchy flattens a preloaded course into traversal form. Modules and
// lessons with no children are valid leafless branches.
func BuildHierarchy(course *models.Course) *Hierarchy {
	h := &Hierarchy{}
	if course == nil {
		return h
	}

	modules := append([]models.CourseModule(nil), course.Modules...)
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].SequenceOrder < modules[j].SequenceOrder
	})

	for _, m := range modules {
		hm := hierarchyModule{id: m.ID}

		lessons := append([]models.Lesson(nil), m.Lessons...)
		sort.SliceStable(lessons, func(i, j int) bool {
			return lessons[i].SequenceOrder < lessons[j].SequenceOrder
		})

		for _, l := range lessons {
			hl := hierarchyLesson{id: l.ID}

			topics := append([]models.Topic(nil), l.Topics...)
			sort.SliceStable(topics, func(i, j int) bool {
				return topics[i].SequenceOrder < topics[j].SequenceOrder
			})
			for _, t := range topics {
				hl.topics = append(hl.topics, t.ID)
			}

			hm.lessons = append(hm.lessons, hl)
		}

		h.modules = append(h.modules, hm)
	}

	return h
}

// Walk visits every (module, lesson, topic) position in curriculum order.
// Lessonless modules are visited as (moduleID, 0, 0); topicless lessons as
// (moduleID, lessonID, 0).
func (h *Hierarchy) Walk(visit func(moduleID, lessonID, topicID uint)) {
	for _, m := range h.modules {
		if len(m.lessons) == 0 {
			visit(m.id, 0, 0)
			continue
		}
		for _, l := range m.lessons {
			if len(l.topics) == 0 {
				visit(m.id, l.id, 0)
				continue
			}
			for _, t := range l.topics {
				visit(m.id, l.id, t)
			}
		}
	}
}

// Totals reports how many modules, lessons and topics the hierarchy contains.
func (h *Hierarchy) Totals() (modules, lessons, topics int) {
	modules = len(h.modules)
	for _, m := range h.modules {
		lessons += len(m.lessons)
		for _, l := range m.lessons {
			topics += len(l.topics)
		}
	}
	return modules, lessons, topics
}

// ModuleIDs returns module identifiers in curriculum order.
func (h *Hierarchy) ModuleIDs() []uint {
	ids := make([]uint, 0, len(h.modules))
	for _, m := range h.modules {
		ids = append(ids, m.id)
	}
	return ids
}

// LessonIDs returns lesson identifiers in curriculum order.
func (h *Hierarchy) LessonIDs() []uint {
	var ids []uint
	for _, m := range h.modules {
		for _, l := range m.lessons {
			ids = append(ids, l.id)
		}
	}
	return ids
}

// TopicIDs returns topic identifiers in curriculum order.
func (h *Hierarchy) TopicIDs() []uint {
	var ids []uint
	for _, m := range h.modules {
		for _, l := range m.lessons {
			ids = append(ids, l.topics...)
		}
	}
	return ids
}
