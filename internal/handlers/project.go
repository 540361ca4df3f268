package handlers

import (
	"net/http"

	"github.com/MatheusWesley/api-projects-management/internal/dto"
	apierrors "github.com/MatheusWesley/api-projects-management/internal/errors"
	"github.com/MatheusWesley/api-projects-management/internal/middleware"
	"github.com/MatheusWesley/api-projects-management/internal/services"
	"github.com/MatheusWesley/api-projects-management/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the caller's projects, newest first
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), userID, params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToProjectListResponse(projects, params, total), "")
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusCreated, dto.ToProjectDTO(*project), "Project created successfully")
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("projectId"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToProjectDTO(*project), "")
}

// UpdateProject changes the name or description of a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("projectId"), userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, dto.ToProjectDTO(*project), "Project updated successfully")
}

// DeleteProject deletes a project and all of its work items
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("projectId"), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Project deleted successfully")
}
