package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MatheusWesley/api-projects-management/internal/dto"
	apierrors "github.com/MatheusWesley/api-projects-management/internal/errors"
	"github.com/MatheusWesley/api-projects-management/internal/middleware"
	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/MatheusWesley/api-projects-management/internal/services"
	"github.com/gin-gonic/gin"
)

type WorkItemHandler struct {
	workItemService *services.WorkItemService
}

func NewWorkItemHandler(workItemService *services.WorkItemService) *WorkItemHandler {
	return &WorkItemHandler{
		workItemService: workItemService,
	}
}

// CreateWorkItem adds a work item to the end of a project's backlog
func (h *WorkItemHandler) CreateWorkItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkItemRequest struct {
		Title          string  `json:"title"`
		Description    string  `json:"description"`
		Type           string  `json:"type"`
		Priority       string  `json:"priority"`
		AssigneeID     *string `json:"assignee_id"`
		StoryPoints    *int    `json:"story_points"`
		EstimatedHours *int    `json:"estimated_hours"`
	}

	var req CreateWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.workItemService.CreateWorkItem(c.Request.Context(), services.CreateWorkItemInput{
		Title:          req.Title,
		Description:    req.Description,
		Type:           models.WorkItemType(req.Type),
		Priority:       models.WorkItemPriority(req.Priority),
		AssigneeID:     req.AssigneeID,
		StoryPoints:    req.StoryPoints,
		EstimatedHours: req.EstimatedHours,
	}, c.Param("projectId"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	setETag(c, item.Version)
	respond(c, http.StatusCreated, dto.ToWorkItemDTO(*item), "Work item created successfully")
}

// ListProjectWorkItems returns every work item of a project by priority order
func (h *WorkItemHandler) ListProjectWorkItems(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	items, err := h.workItemService.GetProjectWorkItems(c.Request.Context(), c.Param("projectId"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToWorkItemDTOs(items), "")
}

// GetKanbanBoard returns the project's items grouped into status columns
func (h *WorkItemHandler) GetKanbanBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	board, err := h.workItemService.GetKanbanBoard(c.Request.Context(), c.Param("projectId"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToKanbanBoardDTO(*board), "")
}

// GetBacklog returns the project's todo items by priority order
func (h *WorkItemHandler) GetBacklog(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	items, err := h.workItemService.GetBacklog(c.Request.Context(), c.Param("projectId"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToWorkItemDTOs(items), "")
}

// GetWorkItem returns a single work item
func (h *WorkItemHandler) GetWorkItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	item, err := h.workItemService.GetWorkItem(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	setETag(c, item.Version)
	respond(c, http.StatusOK, dto.ToWorkItemDTO(*item), "")
}

// UpdateWorkItem applies a partial update. Sending null for story_points or
// estimated_hours clears them.
func (h *WorkItemHandler) UpdateWorkItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateWorkItemRequest struct {
		Title          *string `json:"title"`
		Description    *string `json:"description"`
		Type           *string `json:"type"`
		Status         *string `json:"status"`
		Priority       *string `json:"priority"`
		AssigneeID     *string `json:"assignee_id"`
		StoryPoints    *int    `json:"story_points"`
		EstimatedHours *int    `json:"estimated_hours"`
	}

	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Parse raw JSON as well to detect explicit nulls
	var req UpdateWorkItemRequest
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	opts, ok := writeOptions(c)
	if !ok {
		return
	}

	input := services.UpdateWorkItemInput{
		Title:               req.Title,
		Description:         req.Description,
		StoryPoints:         req.StoryPoints,
		EstimatedHours:      req.EstimatedHours,
		ClearStoryPoints:    isNull(raw, "story_points"),
		ClearEstimatedHours: isNull(raw, "estimated_hours"),
	}
	if req.Type != nil {
		t := models.WorkItemType(*req.Type)
		input.Type = &t
	}
	if req.Status != nil {
		s := models.WorkItemStatus(*req.Status)
		input.Status = &s
	}
	if req.Priority != nil {
		p := models.WorkItemPriority(*req.Priority)
		input.Priority = &p
	}
	if _, sent := raw["assignee_id"]; sent {
		assignee := ""
		if req.AssigneeID != nil {
			assignee = *req.AssigneeID
		}
		input.AssigneeID = &assignee
	}

	item, err := h.workItemService.UpdateWorkItem(c.Request.Context(), c.Param("id"), input, userID, opts...)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	setETag(c, item.Version)
	respond(c, http.StatusOK, dto.ToWorkItemDTO(*item), "Work item updated successfully")
}

// UpdateWorkItemStatus moves a work item to another board column
func (h *WorkItemHandler) UpdateWorkItemStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "status is required", map[string]string{"field": "status"})
		return
	}

	opts, ok := writeOptions(c)
	if !ok {
		return
	}

	item, err := h.workItemService.UpdateWorkItemStatus(c.Request.Context(), c.Param("id"), models.WorkItemStatus(req.Status), userID, opts...)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	setETag(c, item.Version)
	respond(c, http.StatusOK, dto.ToWorkItemDTO(*item), "Work item status updated successfully")
}

// UpdatePriority stores a new priority order for a work item
func (h *WorkItemHandler) UpdatePriority(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdatePriorityRequest struct {
		PriorityOrder *int `json:"priority_order" binding:"required"`
	}

	var req UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "priority_order must be a non-negative integer", map[string]string{"field": "priority_order"})
		return
	}

	opts, ok := writeOptions(c)
	if !ok {
		return
	}

	item, err := h.workItemService.UpdatePriority(c.Request.Context(), c.Param("id"), *req.PriorityOrder, userID, opts...)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	setETag(c, item.Version)
	respond(c, http.StatusOK, dto.ToWorkItemDTO(*item), "Work item priority updated successfully")
}

// AssignWorkItem sets or clears the assignee of a work item
func (h *WorkItemHandler) AssignWorkItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type AssignRequest struct {
		AssigneeID *string `json:"assignee_id"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	opts, ok := writeOptions(c)
	if !ok {
		return
	}

	assignee := ""
	if req.AssigneeID != nil {
		assignee = *req.AssigneeID
	}

	item, err := h.workItemService.AssignWorkItem(c.Request.Context(), c.Param("id"), assignee, userID, opts...)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	setETag(c, item.Version)
	respond(c, http.StatusOK, dto.ToWorkItemDTO(*item), "Work item assigned successfully")
}

// DeleteWorkItem permanently removes a work item
func (h *WorkItemHandler) DeleteWorkItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.workItemService.DeleteWorkItem(c.Request.Context(), c.Param("id"), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Work item deleted successfully")
}

// GenerateWorkItems drafts work items from free text using AI. Drafts are
// returned for review and are not saved.
func (h *WorkItemHandler) GenerateWorkItems(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateWorkItemsRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateWorkItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "text is required", map[string]string{"field": "text"})
		return
	}

	drafts, err := h.workItemService.GenerateWorkItems(c.Request.Context(), c.Param("projectId"), userID, req.Text)
	switch {
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		return
	case errors.Is(err, services.ErrAINoWorkItemsGenerated), errors.Is(err, services.ErrAINoValidWorkItems):
		apierrors.RespondWithError(c, http.StatusUnprocessableEntity, apierrors.NewAPIError(apierrors.ErrCodeInvalidOperation, err.Error()))
		return
	case err != nil:
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"work_items": drafts}, "")
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && string(v) == "null"
}
