package server

import (
	"log/slog"
	"net/http"

	"github.com/MatheusWesley/api-projects-management/internal/config"
	"github.com/MatheusWesley/api-projects-management/internal/constants"
	apierrors "github.com/MatheusWesley/api-projects-management/internal/errors"
	"github.com/MatheusWesley/api-projects-management/internal/handlers"
	"github.com/MatheusWesley/api-projects-management/internal/middleware"
	"github.com/MatheusWesley/api-projects-management/internal/repository"
	"github.com/MatheusWesley/api-projects-management/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewSessionStore returns a Redis-backed store when REDIS_HOST is set and a
// signed cookie store otherwise.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter wires repositories, services and handlers into a gin engine.
// generator may be nil, in which case AI drafting answers 503.
func NewRouter(cfg *config.Config, db *gorm.DB, store sessions.Store, generator services.WorkItemGenerator, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("panic recovered",
				"request_id", c.GetString(constants.ContextKeyRequestID),
				"panic", recovered,
			)
			apierrors.InternalError(c, "")
		}),
		middleware.CORS(cfg.CORSAllowedOrigins),
		sessions.Sessions(constants.SessionCookieName, store),
	)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	workItemRepo := repository.NewWorkItemRepository(db)

	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo)
	workItemService := services.NewWorkItemService(workItemRepo, projectService, generator)

	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	workItemHandler := handlers.NewWorkItemHandler(workItemService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:projectId", projectHandler.GetProject)
			projects.PUT("/:projectId", projectHandler.UpdateProject)
			projects.DELETE("/:projectId", projectHandler.DeleteProject)

			projects.POST("/:projectId/items", workItemHandler.CreateWorkItem)
			projects.GET("/:projectId/items", workItemHandler.ListProjectWorkItems)
			projects.POST("/:projectId/items/generate", workItemHandler.GenerateWorkItems)
			projects.GET("/:projectId/kanban", workItemHandler.GetKanbanBoard)
			projects.GET("/:projectId/backlog", workItemHandler.GetBacklog)
		}

		// Work item routes (protected)
		items := api.Group("/items")
		items.Use(middleware.RequireAuth())
		{
			items.GET("/:id", workItemHandler.GetWorkItem)
			items.PUT("/:id", workItemHandler.UpdateWorkItem)
			items.DELETE("/:id", workItemHandler.DeleteWorkItem)
			items.PATCH("/:id/status", workItemHandler.UpdateWorkItemStatus)
			items.PATCH("/:id/priority", workItemHandler.UpdatePriority)
			items.PATCH("/:id/assign", workItemHandler.AssignWorkItem)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	return r
}
