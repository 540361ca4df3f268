package dto

import (
	"time"

	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/MatheusWesley/api-projects-management/internal/services"
)

// WorkItemDTO represents a work item in API responses
type WorkItemDTO struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Type           models.WorkItemType     `json:"type"`
	Status         models.WorkItemStatus   `json:"status"`
	Priority       models.WorkItemPriority `json:"priority"`
	ProjectID      string                  `json:"project_id"`
	AssigneeID     *string                 `json:"assignee_id"`
	ReporterID     string                  `json:"reporter_id"`
	StoryPoints    *int                    `json:"story_points"`
	EstimatedHours *int                    `json:"estimated_hours"`
	PriorityOrder  int                     `json:"priority_order"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// KanbanBoardDTO is the board view with one array per status column
type KanbanBoardDTO struct {
	Todo       []WorkItemDTO `json:"todo"`
	InProgress []WorkItemDTO `json:"in_progress"`
	Done       []WorkItemDTO `json:"done"`
}

// ToWorkItemDTO converts a WorkItem model to WorkItemDTO
func ToWorkItemDTO(item models.WorkItem) WorkItemDTO {
	return WorkItemDTO{
		ID:             item.ID,
		Title:          item.Title,
		Description:    item.Description,
		Type:           item.Type,
		Status:         item.Status,
		Priority:       item.Priority,
		ProjectID:      item.ProjectID,
		AssigneeID:     item.AssigneeID,
		ReporterID:     item.ReporterID,
		StoryPoints:    item.StoryPoints,
		EstimatedHours: item.EstimatedHours,
		PriorityOrder:  item.PriorityOrder,
		Version:        item.Version,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// ToWorkItemDTOs converts a slice, never returning nil
func ToWorkItemDTOs(items []models.WorkItem) []WorkItemDTO {
	out := make([]WorkItemDTO, len(items))
	for i, item := range items {
		out[i] = ToWorkItemDTO(item)
	}
	return out
}

// ToKanbanBoardDTO converts a board
func ToKanbanBoardDTO(board services.KanbanBoard) KanbanBoardDTO {
	return KanbanBoardDTO{
		Todo:       ToWorkItemDTOs(board.Todo),
		InProgress: ToWorkItemDTOs(board.InProgress),
		Done:       ToWorkItemDTOs(board.Done),
	}
}
