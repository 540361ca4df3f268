package repository

import (
	"context"
	"testing"

	"github.com/MatheusWesley/api-projects-management/internal/database"
	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/MatheusWesley/api-projects-management/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProjectRepo(t *testing.T) (*gorm.DB, ProjectRepository, *models.User) {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	owner := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "hash"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), owner))

	return db, NewProjectRepository(db), owner
}

func TestProjectRepository_IsOwner(t *testing.T) {
	_, repo, owner := setupProjectRepo(t)
	ctx := context.Background()

	project := &models.Project{Name: "Roadmap", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, project))

	ok, err := repo.IsOwner(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsOwner(ctx, project.ID, "stranger")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.IsOwner(ctx, "missing", owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjectRepository_ListByOwnerPaginates(t *testing.T) {
	_, repo, owner := setupProjectRepo(t)
	ctx := context.Background()

	for _, name := range []string{"One", "Two", "Three"} {
		require.NoError(t, repo.Create(ctx, &models.Project{Name: name, OwnerID: owner.ID}))
	}
	require.NoError(t, repo.Create(ctx, &models.Project{Name: "Foreign", OwnerID: "someone-else"}))

	projects, total, err := repo.ListByOwner(ctx, owner.ID, utils.PaginationParams{Page: 1, Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, projects, 2)

	projects, total, err = repo.ListByOwner(ctx, owner.ID, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, projects, 1)
}

func TestProjectRepository_DeleteCascadesWorkItems(t *testing.T) {
	db, repo, owner := setupProjectRepo(t)
	ctx := context.Background()
	items := NewWorkItemRepository(db)

	project := &models.Project{Name: "Doomed", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, project))
	kept := &models.Project{Name: "Kept", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, kept))

	for _, p := range []*models.Project{project, kept} {
		require.NoError(t, items.Create(ctx, &models.WorkItem{
			Title:      "Item",
			Type:       models.WorkItemTypeTask,
			Status:     models.WorkItemStatusTodo,
			Priority:   models.WorkItemPriorityMedium,
			ProjectID:  p.ID,
			ReporterID: owner.ID,
		}))
	}

	require.NoError(t, repo.Delete(ctx, project.ID))

	_, err := repo.FindByID(ctx, project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	remaining, err := items.FindByProjectID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	remaining, err = items.FindByProjectID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	assert.ErrorIs(t, repo.Delete(ctx, project.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, _, owner := setupProjectRepo(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	found, err := users.FindByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, found.ID)

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	duplicate := &models.User{Name: "Dup", Email: "owner@example.com", PasswordHash: "hash"}
	assert.ErrorIs(t, users.Create(ctx, duplicate), gorm.ErrDuplicatedKey)
}
