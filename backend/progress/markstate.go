package progress

import (
	"sort"

	"trainhub/backend/models"
	"trainhub/backend/utils"
)

// MarkState holds a batch's completion marks as three independent identifier
// sets. An identifier lives in at most the set of its own node kind; marking
// a module says nothing about its lessons or topics (admin override
// semantics, kept deliberately non-hierarchical).
type MarkState struct {
	modules map[uint]struct{}
	lessons map[uint]struct{}
	topics  map[uint]struct{}
}

func NewMarkState() *MarkState {
	return &MarkState{
		modules: make(map[uint]struct{}),
		lessons: make(map[uint]struct{}),
		topics:  make(map[uint]struct{}),
	}
}

// ToggleModule flips moduleID's membership in the module set only.
func (s *MarkState) ToggleModule(moduleID uint) {
	toggle(s.modules, moduleID)
}

// ToggleLesson flips lessonID's membership in the lesson set only.
func (s *MarkState) ToggleLesson(lessonID uint) {
	toggle(s.lessons, lessonID)
}

// ToggleTopic flips topicID's membership in the topic set only.
func (s *MarkState) ToggleTopic(topicID uint) {
	toggle(s.topics, topicID)
}

func toggle(set map[uint]struct{}, id uint) {
	if id == 0 {
		return
	}
	if _, marked := set[id]; marked {
		delete(set, id)
	} else {
		set[id] = struct{}{}
	}
}

func (s *MarkState) ModuleMarked(id uint) bool { _, ok := s.modules[id]; return ok }
func (s *MarkState) LessonMarked(id uint) bool { _, ok := s.lessons[id]; return ok }
func (s *MarkState) TopicMarked(id uint) bool  { _, ok := s.topics[id]; return ok }

// IdentifierLists flattens the three sets to ordered-unique identifier lists
// for submission. It is idempotent and never mutates the state.
func (s *MarkState) IdentifierLists() (modules, lessons, topics []uint) {
	return sortedIDs(s.modules), sortedIDs(s.lessons), sortedIDs(s.topics)
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CompletionPayload is the completion section of a batch create/edit request.
// Entries may be bare identifiers, numeric strings, or populated objects
// carrying their own id plus nested completedLessons/completedTopics trees.
type CompletionPayload struct {
	CompletedModules []interface{} `json:"completedModules"`
	CompletedLessons []interface{} `json:"completedLessons"`
	CompletedTopics  []interface{} `json:"completedTopics"`
}

// MarkStateFromPayload recursively flattens a completion payload into the
// three flat sets, merging nested trees with the top-level lists. Malformed
// entries are skipped, never fatal.
func MarkStateFromPayload(p CompletionPayload) *MarkState {
	s := NewMarkState()
	s.Merge(p)
	return s
}

// Merge folds a payload into the existing state. A populated module object
// may nest its completed lessons, and those lessons their completed topics;
// every level is unwrapped and added to the set of its own kind.
func (s *MarkState) Merge(p CompletionPayload) {
	for _, entry := range p.CompletedModules {
		s.addModuleEntry(entry)
	}
	for _, entry := range p.CompletedLessons {
		s.addLessonEntry(entry)
	}
	for _, entry := range p.CompletedTopics {
		s.addTopicEntry(entry)
	}
}

func (s *MarkState) addModuleEntry(entry interface{}) {
	if id, ok := utils.NormalizeID(entry); ok {
		s.modules[id] = struct{}{}
	}
	if obj, ok := entry.(map[string]interface{}); ok {
		for _, nested := range nestedList(obj, "completedLessons") {
			s.addLessonEntry(nested)
		}
	}
}

func (s *MarkState) addLessonEntry(entry interface{}) {
	if id, ok := utils.NormalizeID(entry); ok {
		s.lessons[id] = struct{}{}
	}
	if obj, ok := entry.(map[string]interface{}); ok {
		for _, nested := range nestedList(obj, "completedTopics") {
			s.addTopicEntry(nested)
		}
	}
}

func (s *MarkState) addTopicEntry(entry interface{}) {
	if id, ok := utils.NormalizeID(entry); ok {
		s.topics[id] = struct{}{}
	}
}

func nestedList(obj map[string]interface{}, key string) []interface{} {
	list, _ := obj[key].([]interface{})
	return list
}

// MarkStateFromRecords rebuilds the state from stored completion mark rows.
// Unknown kinds are skipped.
func MarkStateFromRecords(records []models.BatchCompletionMark) *MarkState {
	s := NewMarkState()
	for _, r := range records {
		if r.NodeID == 0 {
			continue
		}
		switch r.Kind {
		case models.MarkKindModule:
			s.modules[r.NodeID] = struct{}{}
		case models.MarkKindLesson:
			s.lessons[r.NodeID] = struct{}{}
		case models.MarkKindTopic:
			s.topics[r.NodeID] = struct{}{}
		}
	}
	return s
}

// Records converts the state to completion mark rows for persistence.
func (s *MarkState) Records(batchID uint) []models.BatchCompletionMark {
	modules, lessons, topics := s.IdentifierLists()
	records := make([]models.BatchCompletionMark, 0, len(modules)+len(lessons)+len(topics))
	for _, id := range modules {
		records = append(records, models.BatchCompletionMark{BatchID: batchID, Kind: models.MarkKindModule, NodeID: id})
	}
	for _, id := range lessons {
		records = append(records, models.BatchCompletionMark{BatchID: batchID, Kind: models.MarkKindLesson, NodeID: id})
	}
	for _, id := range topics {
		records = append(records, models.BatchCompletionMark{BatchID: batchID, Kind: models.MarkKindTopic, NodeID: id})
	}
	return records
}
