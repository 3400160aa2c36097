package models

import "time"

// Plan types accepted by the plan generator
const (
	PlanTypeDays       = "days"
	PlanTypeDailyWords = "dailyWords"
)

// Plan statuses. Status is a free-form string; these are the values the
// application itself uses.
const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusAbandoned = "abandoned"
)

// PlanOptions are the inputs of study plan generation
type PlanOptions struct {
	PlanType      string   `json:"planType"`
	TotalDays     int      `json:"totalDays"`
	DailyNewWords int      `json:"dailyNewWords"`
	ReviewRatio   *float64 `json:"reviewRatio,omitempty"`
	Modules       []string `json:"modules"`
	Name          string   `json:"name,omitempty"`
}

// PlanWord is a dataset word assigned to a plan day
type PlanWord struct {
	ModuleType string `json:"moduleType"`
	ModuleName string `json:"moduleName,omitempty"`
	WordRecord
}

// Ref returns the WordRef of the assigned word
func (w PlanWord) Ref() WordRef {
	return w.WordRecord.Ref(w.ModuleType)
}

// ModulePlanEntry is one module's share of a plan
type ModulePlanEntry struct {
	Type           string       `json:"type"`
	Name           string       `json:"name"`
	TotalWords     int          `json:"totalWords"`
	CompletedWords int          `json:"completedWords"`
	Words          []WordRecord `json:"words"`
}

// PlanDay is the work assigned to one day of a plan
type PlanDay struct {
	Day            int        `json:"day"`
	Date           time.Time  `json:"date"`
	NewWords       []PlanWord `json:"newWords"`
	ReviewWords    []PlanWord `json:"reviewWords"`
	TotalWords     int        `json:"totalWords"`
	Completed      bool       `json:"completed"`
	CompletionRate float64    `json:"completionRate"`
}

// StudyPlan is a precomputed multi-day schedule
type StudyPlan struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       time.Time         `json:"endDate"`
	TotalDays     int               `json:"totalDays"`
	DailyNewWords int               `json:"dailyNewWords"`
	ReviewRatio   float64           `json:"reviewRatio"`
	TotalWords    int               `json:"totalWords"`
	Modules       []ModulePlanEntry `json:"modules"`
	Days          []PlanDay         `json:"days"`
	Status        string            `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// PlanProgress is the elapsed-time view of a plan
type PlanProgress struct {
	RemainingDays int `json:"remainingDays"`
	Progress      int `json:"progress"`
}

// UpdatePlanStatusRequest is the body of a plan status change
type UpdatePlanStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePlanDayRequest is the body of a plan day progress update
type UpdatePlanDayRequest struct {
	Completed      bool    `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
}
