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
	"gorm.io/gorm"
)

var (
	ErrProjectAccessDenied = apierrors.ForbiddenError("You do not have access to this project")
	ErrWorkItemNotFound    = apierrors.NotFoundError("Work item not found")
	ErrWorkItemModified    = apierrors.ConflictError("Work item was modified by another request")
)

// ProjectAccessValidator answers whether a user may act on a project.
type ProjectAccessValidator interface {
	ValidateProjectAccess(ctx context.Context, projectID, userID string) (bool, error)
}

// WorkItemService owns the work item lifecycle: validation, the status state
// machine, priority ordering and the board and backlog views.
type WorkItemService struct {
	repo      repository.WorkItemRepository
	access    ProjectAccessValidator
	generator WorkItemGenerator
}

// NewWorkItemService creates a new WorkItemService. generator may be nil when
// AI suggestions are not configured.
func NewWorkItemService(repo repository.WorkItemRepository, access ProjectAccessValidator, generator WorkItemGenerator) *WorkItemService {
	return &WorkItemService{
		repo:      repo,
		access:    access,
		generator: generator,
	}
}

// CreateWorkItemInput represents input for creating a work item
type CreateWorkItemInput struct {
	Title          string
	Description    string
	Type           models.WorkItemType
	Priority       models.WorkItemPriority
	AssigneeID     *string
	StoryPoints    *int
	EstimatedHours *int
}

// UpdateWorkItemInput represents a partial update. Nil fields are left
// unchanged; an empty AssigneeID clears the assignee.
type UpdateWorkItemInput struct {
	Title               *string
	Description         *string
	Type                *models.WorkItemType
	Status              *models.WorkItemStatus
	Priority            *models.WorkItemPriority
	AssigneeID          *string
	StoryPoints         *int
	EstimatedHours      *int
	ClearStoryPoints    bool
	ClearEstimatedHours bool
}

// WriteOption configures a work item write.
type WriteOption func(*writeOptions)

type writeOptions struct {
	expectedVersion *int
}

// IfVersion makes the write succeed only while the stored item still has
// the given version.
func IfVersion(version int) WriteOption {
	return func(o *writeOptions) {
		o.expectedVersion = &version
	}
}

func collectWriteOptions(opts []WriteOption) writeOptions {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CreateWorkItem validates and stores a new work item in a project. New items
// always start in todo and are appended after the project's existing items.
func (s *WorkItemService) CreateWorkItem(ctx context.Context, input CreateWorkItemInput, projectID, userID string) (*models.WorkItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierrors.MissingField("title")
	}
	if projectID == "" {
		return nil, apierrors.MissingField("project_id")
	}
	if userID == "" {
		return nil, apierrors.MissingField("user_id")
	}

	if err := s.ensureProjectAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	if err := validateTitleLength(title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := validateType(input.Type); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = models.WorkItemPriorityMedium
	} else if err := validatePriority(priority); err != nil {
		return nil, err
	}
	if err := validateStoryPoints(input.StoryPoints); err != nil {
		return nil, err
	}
	if err := validateEstimatedHours(input.EstimatedHours); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, apierrors.Internal("failed to load project work items", err)
	}

	item := &models.WorkItem{
		Title:          title,
		Description:    input.Description,
		Type:           input.Type,
		Status:         models.WorkItemStatusTodo,
		Priority:       priority,
		ProjectID:      projectID,
		AssigneeID:     normalizeAssignee(input.AssigneeID),
		ReporterID:     userID,
		StoryPoints:    input.StoryPoints,
		EstimatedHours: input.EstimatedHours,
		PriorityOrder:  NextPriorityOrder(existing),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apierrors.Internal("failed to create work item", err)
	}

	return item, nil
}

// GetWorkItem returns a work item the user can access
func (s *WorkItemService) GetWorkItem(ctx context.Context, id, userID string) (*models.WorkItem, error) {
	return s.loadAuthorized(ctx, id, userID)
}

// GetProjectWorkItems lists every work item of a project by priority order
func (s *WorkItemService) GetProjectWorkItems(ctx context.Context, projectID, userID string) ([]models.WorkItem, error) {
	if err := s.authorizeProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, apierrors.Internal("failed to list work items", err)
	}
	return items, nil
}

// UpdateWorkItem applies a partial update. A status change is held to the
// same transition rules as UpdateWorkItemStatus.
func (s *WorkItemService) UpdateWorkItem(ctx context.Context, id string, input UpdateWorkItemInput, userID string, opts ...WriteOption) (*models.WorkItem, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	item, err := s.loadAuthorized(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	o := collectWriteOptions(opts)
	if err := checkVersion(item, o); err != nil {
		return nil, err
	}

	if input.Status != nil {
		if err := checkTransition(item.Status, *input.Status); err != nil {
			return nil, err
		}
		item.Status = *input.Status
	}
	if input.Title != nil {
		item.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.Priority != nil {
		item.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		item.AssigneeID = normalizeAssignee(input.AssigneeID)
	}
	if input.ClearStoryPoints {
		item.StoryPoints = nil
	} else if input.StoryPoints != nil {
		item.StoryPoints = input.StoryPoints
	}
	if input.ClearEstimatedHours {
		item.EstimatedHours = nil
	} else if input.EstimatedHours != nil {
		item.EstimatedHours = input.EstimatedHours
	}

	return s.save(ctx, item, o)
}

// UpdateWorkItemStatus moves a work item to another board column.
// Moving to the current status succeeds without writing.
func (s *WorkItemService) UpdateWorkItemStatus(ctx context.Context, id string, status models.WorkItemStatus, userID string, opts ...WriteOption) (*models.WorkItem, error) {
	if id == "" {
		return nil, apierrors.MissingField("id")
	}
	if userID == "" {
		return nil, apierrors.MissingField("user_id")
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	item, err := s.loadAuthorized(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	o := collectWriteOptions(opts)
	if err := checkVersion(item, o); err != nil {
		return nil, err
	}

	if err := checkTransition(item.Status, status); err != nil {
		return nil, err
	}
	if item.Status == status {
		return item, nil
	}

	item.Status = status
	return s.save(ctx, item, o)
}

// UpdatePriority stores a new priority order verbatim. Other items are not
// renumbered; lower values sort first.
func (s *WorkItemService) UpdatePriority(ctx context.Context, id string, priorityOrder int, userID string, opts ...WriteOption) (*models.WorkItem, error) {
	if id == "" {
		return nil, apierrors.MissingField("id")
	}
	if userID == "" {
		return nil, apierrors.MissingField("user_id")
	}
	if priorityOrder < 0 {
		return nil, apierrors.Validation("priority_order", "priority_order must be a non-negative integer")
	}

	item, err := s.loadAuthorized(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	o := collectWriteOptions(opts)
	if err := checkVersion(item, o); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePriority(ctx, item.ID, priorityOrder, o.expectedVersion); err != nil {
		return nil, translateWriteError(err, "failed to update priority")
	}

	return s.reload(ctx, item.ID)
}

// AssignWorkItem sets only the assignee. An empty assigneeID unassigns.
// The assignee is not checked against the user table.
func (s *WorkItemService) AssignWorkItem(ctx context.Context, id, assigneeID, userID string, opts ...WriteOption) (*models.WorkItem, error) {
	item, err := s.loadAuthorized(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	o := collectWriteOptions(opts)
	if err := checkVersion(item, o); err != nil {
		return nil, err
	}

	item.AssigneeID = normalizeAssignee(&assigneeID)
	return s.save(ctx, item, o)
}

// DeleteWorkItem permanently removes a work item
func (s *WorkItemService) DeleteWorkItem(ctx context.Context, id, userID string) error {
	item, err := s.loadAuthorized(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkItemNotFound
		}
		return apierrors.Internal("failed to delete work item", err)
	}
	return nil
}

// GetBacklog returns the project's todo items by ascending priority order
func (s *WorkItemService) GetBacklog(ctx context.Context, projectID, userID string) ([]models.WorkItem, error) {
	if err := s.authorizeProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindBacklogItems(ctx, projectID)
	if err != nil {
		return nil, apierrors.Internal("failed to load backlog", err)
	}
	return BuildBacklog(items), nil
}

// GetKanbanBoard returns the project's work items grouped by status
func (s *WorkItemService) GetKanbanBoard(ctx context.Context, projectID, userID string) (*KanbanBoard, error) {
	if err := s.authorizeProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, apierrors.Internal("failed to load board", err)
	}

	board := BuildKanbanBoard(items)
	return &board, nil
}

func (s *WorkItemService) save(ctx context.Context, item *models.WorkItem, o writeOptions) (*models.WorkItem, error) {
	if err := s.repo.Update(ctx, item, o.expectedVersion); err != nil {
		return nil, translateWriteError(err, "failed to update work item")
	}
	return s.reload(ctx, item.ID)
}

func (s *WorkItemService) reload(ctx context.Context, id string) (*models.WorkItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkItemNotFound
		}
		return nil, apierrors.Internal("failed to reload work item", err)
	}
	return item, nil
}

// loadAuthorized fetches a work item and checks the caller may act on its
// project.
func (s *WorkItemService) loadAuthorized(ctx context.Context, id, userID string) (*models.WorkItem, error) {
	if id == "" {
		return nil, apierrors.MissingField("id")
	}
	if userID == "" {
		return nil, apierrors.MissingField("user_id")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkItemNotFound
		}
		return nil, apierrors.Internal("failed to find work item", err)
	}

	if err := s.ensureProjectAccess(ctx, item.ProjectID, userID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WorkItemService) authorizeProject(ctx context.Context, projectID, userID string) error {
	if projectID == "" {
		return apierrors.MissingField("project_id")
	}
	if userID == "" {
		return apierrors.MissingField("user_id")
	}
	return s.ensureProjectAccess(ctx, projectID, userID)
}

func (s *WorkItemService) ensureProjectAccess(ctx context.Context, projectID, userID string) error {
	ok, err := s.access.ValidateProjectAccess(ctx, projectID, userID)
	if err != nil {
		return apierrors.Internal("failed to verify project access", err)
	}
	if !ok {
		return ErrProjectAccessDenied
	}
	return nil
}

func checkVersion(item *models.WorkItem, o writeOptions) error {
	if o.expectedVersion != nil && *o.expectedVersion != item.Version {
		return ErrWorkItemModified.WithDetails(map[string]int{"current_version": item.Version})
	}
	return nil
}

func checkTransition(from, to models.WorkItemStatus) error {
	if !models.IsAllowedTransition(from, to) {
		return apierrors.BusinessLogic(
			apierrors.ErrCodeInvalidStatusTransition,
			fmt.Sprintf("Cannot transition work item from %s to %s", from, to),
		).WithDetails(map[string]string{"from": string(from), "to": string(to)})
	}
	return nil
}

func translateWriteError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrWorkItemModified
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrWorkItemNotFound
	default:
		return apierrors.Internal(message, err)
	}
}

func normalizeAssignee(assigneeID *string) *string {
	if assigneeID == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*assigneeID)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateUpdateInput(input UpdateWorkItemInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return apierrors.Validation("title", "title cannot be empty")
		}
		if err := validateTitleLength(title); err != nil {
			return err
		}
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return err
		}
	}
	if input.Type != nil {
		if err := validateType(*input.Type); err != nil {
			return err
		}
	}
	if input.Status != nil {
		if err := validateStatus(*input.Status); err != nil {
			return err
		}
	}
	if input.Priority != nil {
		if err := validatePriority(*input.Priority); err != nil {
			return err
		}
	}
	if err := validateStoryPoints(input.StoryPoints); err != nil {
		return err
	}
	return validateEstimatedHours(input.EstimatedHours)
}

func validateTitleLength(title string) error {
	if utf8.RuneCountInString(title) > constants.MaxWorkItemTitleLength {
		return apierrors.Validation("title", fmt.Sprintf("title must be at most %d characters", constants.MaxWorkItemTitleLength))
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > constants.MaxWorkItemDescriptionLength {
		return apierrors.Validation("description", fmt.Sprintf("description must be at most %d characters", constants.MaxWorkItemDescriptionLength))
	}
	return nil
}

func validateType(t models.WorkItemType) error {
	if !t.Valid() {
		return apierrors.Validation("type", "type must be one of task, bug, story")
	}
	return nil
}

func validateStatus(status models.WorkItemStatus) error {
	if !status.Valid() {
		return apierrors.Validation("status", "status must be one of todo, in_progress, done")
	}
	return nil
}

func validatePriority(priority models.WorkItemPriority) error {
	if !priority.Valid() {
		return apierrors.Validation("priority", "priority must be one of low, medium, high, critical")
	}
	return nil
}

func validateStoryPoints(points *int) error {
	if points != nil && (*points < constants.MinStoryPoints || *points > constants.MaxStoryPoints) {
		return apierrors.Validation("story_points", fmt.Sprintf("story_points must be between %d and %d", constants.MinStoryPoints, constants.MaxStoryPoints))
	}
	return nil
}

func validateEstimatedHours(hours *int) error {
	if hours != nil && (*hours < constants.MinEstimatedHours || *hours > constants.MaxEstimatedHours) {
		return apierrors.Validation("estimated_hours", fmt.Sprintf("estimated_hours must be between %d and %d", constants.MinEstimatedHours, constants.MaxEstimatedHours))
	}
	return nil
}
