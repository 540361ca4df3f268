package repository

import (
	"context"
	"time"

	"github.com/MatheusWesley/api-projects-management/internal/database"
	"github.com/MatheusWesley/api-projects-management/internal/models"
	"gorm.io/gorm"
)

// GormWorkItemRepository is a GORM implementation of WorkItemRepository
type GormWorkItemRepository struct {
	db *gorm.DB
}

// NewWorkItemRepository creates a new WorkItemRepository
func NewWorkItemRepository(db *gorm.DB) WorkItemRepository {
	return &GormWorkItemRepository{db: db}
}

// Create creates a new work item
func (r *GormWorkItemRepository) Create(ctx context.Context, item *models.WorkItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID finds a work item by ID
func (r *GormWorkItemRepository) FindByID(ctx context.Context, id string) (*models.WorkItem, error) {
	var item models.WorkItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByProjectID lists every work item of a project ordered by priority order
func (r *GormWorkItemRepository) FindByProjectID(ctx context.Context, projectID string) ([]models.WorkItem, error) {
	var items []models.WorkItem
	if err := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID), database.ByPriorityOrder).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes the mutable fields of item. Project and reporter are never
// rewritten. On success item.Version holds the new version.
func (r *GormWorkItemRepository) Update(ctx context.Context, item *models.WorkItem, expectedVersion *int) error {
	previous := item.Version
	item.Version = previous + 1

	query := r.db.WithContext(ctx).
		Model(item).
		Select("*").
		Omit("id", "project_id", "reporter_id", "created_at")
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}

	result := query.Updates(item)
	if result.Error != nil {
		item.Version = previous
		return result.Error
	}
	if result.RowsAffected == 0 {
		item.Version = previous
		if expectedVersion != nil {
			return ErrVersionConflict
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete permanently removes a work item
func (r *GormWorkItemRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WorkItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindBacklogItems lists the project's todo items ordered by priority order
func (r *GormWorkItemRepository) FindBacklogItems(ctx context.Context, projectID string) ([]models.WorkItem, error) {
	var items []models.WorkItem
	if err := r.db.WithContext(ctx).
		Scopes(
			database.InProject(projectID),
			database.WithStatus(models.WorkItemStatusTodo),
			database.ByPriorityOrder,
		).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdatePriority sets the priority order of a single work item. Other items
// keep their orders.
func (r *GormWorkItemRepository) UpdatePriority(ctx context.Context, id string, priorityOrder int, expectedVersion *int) error {
	query := r.db.WithContext(ctx).Model(&models.WorkItem{}).Where("id = ?", id)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}

	result := query.Updates(map[string]interface{}{
		"priority_order": priorityOrder,
		"version":        gorm.Expr("version + 1"),
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if expectedVersion != nil {
			return ErrVersionConflict
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}
