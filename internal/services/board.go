package services

import (
	"cmp"
	"slices"

	"github.com/MatheusWesley/api-projects-management/internal/models"
)

// KanbanBoard groups a project's work items into status columns.
type KanbanBoard struct {
	Todo       []models.WorkItem `json:"todo"`
	InProgress []models.WorkItem `json:"in_progress"`
	Done       []models.WorkItem `json:"done"`
}

// NextPriorityOrder returns the order for an item appended to the project:
// one past the highest existing order, or 0 for an empty project.
func NextPriorityOrder(existing []models.WorkItem) int {
	highest := -1
	for _, item := range existing {
		if item.PriorityOrder > highest {
			highest = item.PriorityOrder
		}
	}
	return highest + 1
}

// BuildKanbanBoard partitions items by status. Todo and in-progress columns
// are sorted by ascending priority order, done by most recent update first.
// Sorting is stable so ties keep their input order.
func BuildKanbanBoard(items []models.WorkItem) KanbanBoard {
	board := KanbanBoard{
		Todo:       []models.WorkItem{},
		InProgress: []models.WorkItem{},
		Done:       []models.WorkItem{},
	}

	for _, item := range items {
		switch item.Status {
		case models.WorkItemStatusTodo:
			board.Todo = append(board.Todo, item)
		case models.WorkItemStatusInProgress:
			board.InProgress = append(board.InProgress, item)
		case models.WorkItemStatusDone:
			board.Done = append(board.Done, item)
		}
	}

	slices.SortStableFunc(board.Todo, byPriorityOrder)
	slices.SortStableFunc(board.InProgress, byPriorityOrder)
	slices.SortStableFunc(board.Done, func(a, b models.WorkItem) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	return board
}

// BuildBacklog returns the todo items sorted by ascending priority order.
func BuildBacklog(items []models.WorkItem) []models.WorkItem {
	backlog := make([]models.WorkItem, 0, len(items))
	for _, item := range items {
		if item.Status == models.WorkItemStatusTodo {
			backlog = append(backlog, item)
		}
	}
	slices.SortStableFunc(backlog, byPriorityOrder)
	return backlog
}

func byPriorityOrder(a, b models.WorkItem) int {
	return cmp.Compare(a.PriorityOrder, b.PriorityOrder)
}
