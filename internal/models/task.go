package models

import "time"

// TaskTypeNew marks a new-word allocation inside a daily task
const TaskTypeNew = "new"

// ReviewCandidate is a studied word whose review falls due today
type ReviewCandidate struct {
	ModuleType string    `json:"moduleType"`
	WordID     WordID    `json:"wordId"`
	LastStudy  time.Time `json:"lastStudy"`
	StudyCount int       `json:"studyCount"`
	DueDays    int       `json:"dueDays"`
}

// NewWordTask is the number of new words to study in one module
type NewWordTask struct {
	ModuleType string    `json:"moduleType"`
	Count      int       `json:"count"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// DailyTask is one day's bundle of review and new-word work
type DailyTask struct {
	ID          string            `json:"id"`
	Review      []ReviewCandidate `json:"review"`
	New         []NewWordTask     `json:"new"`
	Total       int               `json:"total"`
	CreatedAt   time.Time         `json:"createdAt"`
	Completed   bool              `json:"completed,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

// NewWordCount sums the new-word allocations of the bundle
func (t DailyTask) NewWordCount() int {
	n := 0
	for _, nt := range t.New {
		n += nt.Count
	}
	return n
}
