package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MatheusWesley/api-projects-management/internal/database"
	"github.com/MatheusWesley/api-projects-management/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type WorkItemRepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	repo     WorkItemRepository
	projects ProjectRepository
	ctx      context.Context
	project  *models.Project
}

func (suite *WorkItemRepositoryTestSuite) SetupTest() {
	var err error
	suite.db, err = database.OpenSQLite(":memory:")
	suite.Require().NoError(err)

	suite.repo = NewWorkItemRepository(suite.db)
	suite.projects = NewProjectRepository(suite.db)
	suite.ctx = context.Background()

	owner := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "hash"}
	suite.Require().NoError(suite.db.Create(owner).Error)

	suite.project = &models.Project{Name: "Board", OwnerID: owner.ID}
	suite.Require().NoError(suite.projects.Create(suite.ctx, suite.project))
}

func (suite *WorkItemRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *WorkItemRepositoryTestSuite) createItem(title string, status models.WorkItemStatus, order int) *models.WorkItem {
	item := &models.WorkItem{
		Title:         title,
		Type:          models.WorkItemTypeTask,
		Status:        status,
		Priority:      models.WorkItemPriorityMedium,
		ProjectID:     suite.project.ID,
		ReporterID:    suite.project.OwnerID,
		PriorityOrder: order,
	}
	suite.Require().NoError(suite.repo.Create(suite.ctx, item))
	return item
}

func (suite *WorkItemRepositoryTestSuite) TestCreate_AssignsIDAndVersion() {
	item := suite.createItem("First", models.WorkItemStatusTodo, 0)

	suite.NotEmpty(item.ID)
	suite.Equal(1, item.Version)

	found, err := suite.repo.FindByID(suite.ctx, item.ID)
	suite.Require().NoError(err)
	suite.Equal("First", found.Title)
}

func (suite *WorkItemRepositoryTestSuite) TestFindByID_NotFound() {
	_, err := suite.repo.FindByID(suite.ctx, "missing")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *WorkItemRepositoryTestSuite) TestFindByProjectID_OrdersByPriority() {
	suite.createItem("C", models.WorkItemStatusDone, 5)
	suite.createItem("A", models.WorkItemStatusTodo, 1)
	suite.createItem("B", models.WorkItemStatusInProgress, 3)

	items, err := suite.repo.FindByProjectID(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)
	suite.Require().Len(items, 3)
	suite.Equal("A", items[0].Title)
	suite.Equal("B", items[1].Title)
	suite.Equal("C", items[2].Title)
}

func (suite *WorkItemRepositoryTestSuite) TestFindBacklogItems_OnlyTodo() {
	suite.createItem("Later", models.WorkItemStatusTodo, 9)
	suite.createItem("Doing", models.WorkItemStatusInProgress, 0)
	suite.createItem("Sooner", models.WorkItemStatusTodo, 2)

	items, err := suite.repo.FindBacklogItems(suite.ctx, suite.project.ID)
	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal("Sooner", items[0].Title)
	suite.Equal("Later", items[1].Title)
}

func (suite *WorkItemRepositoryTestSuite) TestUpdate_KeepsImmutableFields() {
	item := suite.createItem("Original", models.WorkItemStatusTodo, 0)

	item.Title = "Renamed"
	item.Status = models.WorkItemStatusInProgress
	item.ProjectID = "other-project"
	item.ReporterID = "someone-else"
	suite.Require().NoError(suite.repo.Update(suite.ctx, item, nil))
	suite.Equal(2, item.Version)

	found, err := suite.repo.FindByID(suite.ctx, item.ID)
	suite.Require().NoError(err)
	suite.Equal("Renamed", found.Title)
	suite.Equal(models.WorkItemStatusInProgress, found.Status)
	suite.Equal(suite.project.ID, found.ProjectID)
	suite.Equal(suite.project.OwnerID, found.ReporterID)
	suite.Equal(2, found.Version)
}

func (suite *WorkItemRepositoryTestSuite) TestUpdate_VersionConflict() {
	item := suite.createItem("Original", models.WorkItemStatusTodo, 0)

	stale := 7
	item.Title = "Lost update"
	err := suite.repo.Update(suite.ctx, item, &stale)
	suite.ErrorIs(err, ErrVersionConflict)
	suite.Equal(1, item.Version)

	current := 1
	suite.Require().NoError(suite.repo.Update(suite.ctx, item, &current))
	suite.Equal(2, item.Version)
}

func (suite *WorkItemRepositoryTestSuite) TestUpdate_Missing() {
	item := &models.WorkItem{ID: "missing", Title: "Ghost", Version: 1}
	err := suite.repo.Update(suite.ctx, item, nil)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *WorkItemRepositoryTestSuite) TestUpdatePriority() {
	item := suite.createItem("Item", models.WorkItemStatusTodo, 3)
	other := suite.createItem("Other", models.WorkItemStatusTodo, 4)

	suite.Require().NoError(suite.repo.UpdatePriority(suite.ctx, item.ID, 4, nil))

	found, err := suite.repo.FindByID(suite.ctx, item.ID)
	suite.Require().NoError(err)
	suite.Equal(4, found.PriorityOrder)
	suite.Equal(2, found.Version)

	// No renumbering of colliding orders
	untouched, err := suite.repo.FindByID(suite.ctx, other.ID)
	suite.Require().NoError(err)
	suite.Equal(4, untouched.PriorityOrder)

	stale := 1
	suite.ErrorIs(suite.repo.UpdatePriority(suite.ctx, item.ID, 0, &stale), ErrVersionConflict)
	suite.ErrorIs(suite.repo.UpdatePriority(suite.ctx, "missing", 0, nil), gorm.ErrRecordNotFound)
}

func (suite *WorkItemRepositoryTestSuite) TestDelete() {
	item := suite.createItem("Doomed", models.WorkItemStatusTodo, 0)

	suite.Require().NoError(suite.repo.Delete(suite.ctx, item.ID))

	_, err := suite.repo.FindByID(suite.ctx, item.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	// Hard delete: the row is gone, not tombstoned
	var count int64
	suite.db.Unscoped().Model(&models.WorkItem{}).Where("id = ?", item.ID).Count(&count)
	suite.Zero(count)

	suite.ErrorIs(suite.repo.Delete(suite.ctx, item.ID), gorm.ErrRecordNotFound)
}

func TestWorkItemRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(WorkItemRepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestWorkItemRepository_CreatePropagatesDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWorkItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `work_items`")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.WorkItem{Title: "Item", ProjectID: "p", ReporterID: "u"})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepository_FindByProjectIDPropagatesDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWorkItemRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `work_items` WHERE project_id = ?")).
		WithArgs("p1").
		WillReturnError(errors.New("too many connections"))

	items, err := repo.FindByProjectID(context.Background(), "p1")
	assert.Nil(t, items)
	assert.EqualError(t, err, "too many connections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepository_UpdatePriorityVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWorkItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `work_items` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	expected := 3
	err := repo.UpdatePriority(context.Background(), "item-1", 2, &expected)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
