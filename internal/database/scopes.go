package database

import (
	"gorm.io/gorm"

	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/MatheusWesley/api-projects-management/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// InProject restricts a work item query to one project
func InProject(projectID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ?", projectID)
	}
}

// WithStatus restricts a work item query to one board column
func WithStatus(status models.WorkItemStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

// ByPriorityOrder sorts work items the way boards and backlogs show them.
// Creation time breaks ties between equal orders.
func ByPriorityOrder(db *gorm.DB) *gorm.DB {
	return db.Order("priority_order ASC, created_at ASC")
}
