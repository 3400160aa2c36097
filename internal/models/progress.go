package models

import "time"

// StudyStat records how often a word was studied and when it was last seen
type StudyStat struct {
	Count     int        `json:"count"`
	LastStudy *time.Time `json:"lastStudy"`
}

// ProgressOverview is the dashboard summary of all study activity
type ProgressOverview struct {
	RecentCount     int `json:"recentCount"`
	FavoriteCount   int `json:"favoriteCount"`
	TotalStudyCount int `json:"totalStudyCount"`
	StudiedWords    int `json:"studiedWords"`
	StudyDays       int `json:"studyDays"`
	StudyStreak     int `json:"studyStreak"`
}

// WordProgress is the per-word view returned by the API
type WordProgress struct {
	ModuleType string     `json:"moduleType"`
	WordID     WordID     `json:"wordId"`
	Favorite   bool       `json:"favorite"`
	StudyCount int        `json:"studyCount"`
	LastStudy  *time.Time `json:"lastStudy"`
}
