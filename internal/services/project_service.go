package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MatheusWesley/api-projects-management/internal/constants"
	apierrors "github.com/MatheusWesley/api-projects-management/internal/errors"
	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/MatheusWesley/api-projects-management/internal/repository"
	"github.com/MatheusWesley/api-projects-management/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = apierrors.NotFoundError("Project not found")
)

// ProjectService provides business logic for project operations. It is also
// the access oracle for work items: only a project's owner may act on it.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     string
}

// UpdateProjectInput represents a partial project update.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// CreateProject creates a new project owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if input.OwnerID == "" {
		return nil, apierrors.MissingField("owner_id")
	}
	name, err := validateProjectName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateProjectDescription(input.Description); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, apierrors.Internal("failed to create project", err)
	}

	return project, nil
}

// ListProjects returns the projects owned by a user.
func (s *ProjectService) ListProjects(ctx context.Context, ownerID string, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, 0, apierrors.Internal("failed to list projects", err)
	}
	return projects, total, nil
}

// GetProject returns a project the user owns.
func (s *ProjectService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Internal("failed to find project", err)
	}

	if project.OwnerID != userID {
		return nil, ErrProjectAccessDenied
	}
	return project, nil
}

// UpdateProject renames or re-describes a project.
func (s *ProjectService) UpdateProject(ctx context.Context, id, userID string, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateProjectName(*input.Name)
		if err != nil {
			return nil, err
		}
		project.Name = name
	}
	if input.Description != nil {
		if err := validateProjectDescription(*input.Description); err != nil {
			return nil, err
		}
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, apierrors.Internal("failed to update project", err)
	}
	return project, nil
}

// DeleteProject removes a project together with its work items.
func (s *ProjectService) DeleteProject(ctx context.Context, id, userID string) error {
	if _, err := s.GetProject(ctx, id, userID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return apierrors.Internal("failed to delete project", err)
	}
	return nil
}

// ValidateProjectAccess reports whether the user owns the project. Unknown
// projects are simply not accessible.
func (s *ProjectService) ValidateProjectAccess(ctx context.Context, projectID, userID string) (bool, error) {
	if projectID == "" || userID == "" {
		return false, nil
	}

	ok, err := s.projectRepo.IsOwner(ctx, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check project owner: %w", err)
	}
	return ok, nil
}

func validateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apierrors.Validation("name", "project name cannot be empty")
	}
	if utf8.RuneCountInString(name) > constants.MaxProjectNameLength {
		return "", apierrors.Validation("name", fmt.Sprintf("project name must be at most %d characters", constants.MaxProjectNameLength))
	}
	return name, nil
}

func validateProjectDescription(description string) error {
	if utf8.RuneCountInString(description) > constants.MaxProjectDescriptionLength {
		return apierrors.Validation("description", fmt.Sprintf("description must be at most %d characters", constants.MaxProjectDescriptionLength))
	}
	return nil
}
