package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkItemStatus string

const (
	WorkItemStatusTodo       WorkItemStatus = "todo"
	WorkItemStatusInProgress WorkItemStatus = "in_progress"
	WorkItemStatusDone       WorkItemStatus = "done"
)

// WorkItemStatuses lists the board columns in display order.
var WorkItemStatuses = []WorkItemStatus{
	WorkItemStatusTodo,
	WorkItemStatusInProgress,
	WorkItemStatusDone,
}

func (s WorkItemStatus) Valid() bool {
	switch s {
	case WorkItemStatusTodo, WorkItemStatusInProgress, WorkItemStatusDone:
		return true
	}
	return false
}

type WorkItemType string

const (
	WorkItemTypeTask  WorkItemType = "task"
	WorkItemTypeBug   WorkItemType = "bug"
	WorkItemTypeStory WorkItemType = "story"
)

func (t WorkItemType) Valid() bool {
	switch t {
	case WorkItemTypeTask, WorkItemTypeBug, WorkItemTypeStory:
		return true
	}
	return false
}

type WorkItemPriority string

const (
	WorkItemPriorityLow      WorkItemPriority = "low"
	WorkItemPriorityMedium   WorkItemPriority = "medium"
	WorkItemPriorityHigh     WorkItemPriority = "high"
	WorkItemPriorityCritical WorkItemPriority = "critical"
)

func (p WorkItemPriority) Valid() bool {
	switch p {
	case WorkItemPriorityLow, WorkItemPriorityMedium, WorkItemPriorityHigh, WorkItemPriorityCritical:
		return true
	}
	return false
}

// allowedTransitions is the complete status graph. Staying in place is
// handled by IsAllowedTransition and is not listed here.
var allowedTransitions = map[WorkItemStatus][]WorkItemStatus{
	WorkItemStatusTodo:       {WorkItemStatusInProgress, WorkItemStatusDone},
	WorkItemStatusInProgress: {WorkItemStatusTodo, WorkItemStatusDone},
	WorkItemStatusDone:       {WorkItemStatusInProgress, WorkItemStatusTodo},
}

// IsAllowedTransition reports whether a work item may move from one status to
// another. Every path that changes a status goes through it.
func IsAllowedTransition(from, to WorkItemStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type WorkItem struct {
	ID             string           `gorm:"type:varchar(36);primarykey" json:"id"`
	Title          string           `gorm:"type:varchar(200);not null" json:"title"`
	Description    string           `gorm:"type:text" json:"description"`
	Type           WorkItemType     `gorm:"type:varchar(20);not null" json:"type"`
	Status         WorkItemStatus   `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority       WorkItemPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	ProjectID      string           `gorm:"type:varchar(36);not null" json:"project_id"`
	AssigneeID     *string          `gorm:"type:varchar(36)" json:"assignee_id"`
	ReporterID     string           `gorm:"type:varchar(36);not null" json:"reporter_id"`
	StoryPoints    *int             `json:"story_points"`
	EstimatedHours *int             `json:"estimated_hours"`
	PriorityOrder  int              `gorm:"not null" json:"priority_order"`
	Version        int              `gorm:"not null" json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (w *WorkItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Version == 0 {
		w.Version = 1
	}
	return nil
}
