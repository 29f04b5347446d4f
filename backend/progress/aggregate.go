package progress

import "math"

// BatchProgress is the derived progress detail served with a batch. It is
// computed here, where the marks live, and treated as authoritative by
// clients: they render it, they never recompute it.
type BatchProgress struct {
	Percentage            int `json:"percentage"`
	CompletedModulesCount int `json:"completedModulesCount"`
	TotalModulesCount     int `json:"totalModulesCount"`
	CompletedLessonsCount int `json:"completedLessonsCount"`
	TotalLessonsCount     int `json:"totalLessonsCount"`
	CompletedTopicsCount  int `json:"completedTopicsCount"`
	TotalTopicsCount      int `json:"totalTopicsCount"`
}

// Summary aggregates the marks against the hierarchy. Only marks for nodes
// that exist in the hierarchy count; stale marks left behind by curriculum
// edits are ignored rather than inflating the numbers. The percentage weighs
// lessons and topics (the units an admin actually works through); a batch
// explicitly marked completed reports 100 regardless of leaf marks.
func Summary(h *Hierarchy, marks *MarkState, markedCompleted bool) BatchProgress {
	totalModules, totalLessons, totalTopics := h.Totals()

	p := BatchProgress{
		TotalModulesCount: totalModules,
		TotalLessonsCount: totalLessons,
		TotalTopicsCount:  totalTopics,
	}

	if marks != nil {
		for _, id := range h.ModuleIDs() {
			if marks.ModuleMarked(id) {
				p.CompletedModulesCount++
			}
		}
		for _, id := range h.LessonIDs() {
			if marks.LessonMarked(id) {
				p.CompletedLessonsCount++
			}
		}
		for _, id := range h.TopicIDs() {
			if marks.TopicMarked(id) {
				p.CompletedTopicsCount++
			}
		}
	}

	switch {
	case markedCompleted:
		p.Percentage = 100
	case totalLessons+totalTopics > 0:
		done := float64(p.CompletedLessonsCount + p.CompletedTopicsCount)
		total := float64(totalLessons + totalTopics)
		p.Percentage = int(math.Round(done / total * 100))
	}

	if p.Percentage > 100 {
		p.Percentage = 100
	}

	return p
}
