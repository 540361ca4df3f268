package repository

import (
	"context"
	"errors"

	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/MatheusWesley/api-projects-management/internal/utils"
)

// ErrVersionConflict is returned by versioned updates when the stored row no
// longer carries the expected version.
var ErrVersionConflict = errors.New("repository: version conflict")

// WorkItemRepository defines the interface for work item data access
type WorkItemRepository interface {
	// Create creates a new work item
	Create(ctx context.Context, item *models.WorkItem) error

	// FindByID finds a work item by ID
	FindByID(ctx context.Context, id string) (*models.WorkItem, error)

	// FindByProjectID lists every work item of a project ordered by priority order
	FindByProjectID(ctx context.Context, projectID string) ([]models.WorkItem, error)

	// Update writes all mutable fields and bumps the version. A non-nil
	// expectedVersion makes the write conditional on the stored version.
	Update(ctx context.Context, item *models.WorkItem, expectedVersion *int) error

	// Delete permanently removes a work item
	Delete(ctx context.Context, id string) error

	// FindBacklogItems lists the project's todo items ordered by priority order
	FindBacklogItems(ctx context.Context, projectID string) ([]models.WorkItem, error)

	// UpdatePriority sets the priority order of a single work item
	UpdatePriority(ctx context.Context, id string, priorityOrder int, expectedVersion *int) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// ListByOwner lists a user's projects, newest first
	ListByOwner(ctx context.Context, ownerID string, params utils.PaginationParams) ([]models.Project, int64, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project and all of its work items
	Delete(ctx context.Context, id string) error

	// IsOwner reports whether userID owns the project
	IsOwner(ctx context.Context, projectID, userID string) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
