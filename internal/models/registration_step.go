package models

import "time"

// StepStatus is the lifecycle state of an onboarding step.
type StepStatus string

const (
	StepNotStarted StepStatus = "NOT_STARTED"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepCompleted  StepStatus = "COMPLETED"
	StepSkipped    StepStatus = "SKIPPED"
	// StepBlocked is projected at read time for NOT_STARTED steps with unmet
	// dependencies; it is never stored.
	StepBlocked StepStatus = "BLOCKED"
)

// RegistrationStep is one step of the business registration workflow.
// Dependencies reference other steps by their step number and must all be
// COMPLETED (or SKIPPED, for optional steps) before this step can start.
// Version implements optimistic locking against concurrent updates.
type RegistrationStep struct {
	Base
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_step" json:"user_id"`
	StepNumber   int        `gorm:"not null;uniqueIndex:idx_user_step" json:"step_number"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	Responsible  string     `json:"responsible"`
	Dependencies []int      `gorm:"serializer:json" json:"dependencies"`
	Optional     bool       `gorm:"default:false" json:"optional"`
	Status       StepStatus `gorm:"not null;default:NOT_STARTED" json:"status"`
	Version      int        `gorm:"not null;default:0" json:"version"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// DependencySatisfied reports whether a dependency in the given status counts
// as fulfilled.
func DependencySatisfied(s StepStatus) bool {
	return s == StepCompleted || s == StepSkipped
}

// EffectiveStatus projects a NOT_STARTED step with unmet dependencies to
// BLOCKED. statusByNumber maps step numbers to their stored statuses.
func (s *RegistrationStep) EffectiveStatus(statusByNumber map[int]StepStatus) StepStatus {
	if s.Status != StepNotStarted {
		return s.Status
	}
	for _, dep := range s.Dependencies {
		if !DependencySatisfied(statusByNumber[dep]) {
			return StepBlocked
		}
	}
	return StepNotStarted
}

// DecisionPoint is a structured decision attached to a registration step.
// The recommendation is advisory: an undecided point never blocks completion
// of its step.
type DecisionPoint struct {
	Base
	UserID               string     `gorm:"type:uuid;not null;index" json:"user_id"`
	StepID               string     `gorm:"type:uuid;not null" json:"step_id"`
	Key                  string     `gorm:"not null" json:"key"`
	Question             string     `gorm:"not null" json:"question"`
	OptionA              string     `gorm:"not null" json:"option_a"`
	OptionB              string     `gorm:"not null" json:"option_b"`
	Recommendation       string     `json:"recommendation"`
	RecommendationReason string     `json:"recommendation_reason"`
	UserChoice           string     `json:"user_choice"`
	DecidedAt            *time.Time `json:"decided_at,omitempty"`
}
