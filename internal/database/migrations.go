package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// indexes backs the board, backlog and ownership lookups.
var indexes = []index{
	// Board and backlog reads filter by project and status, then sort by order
	{"work_items", "idx_work_items_project_status_order", "project_id, status, priority_order"},
	{"work_items", "idx_work_items_project_updated_at", "project_id, updated_at"},
	{"work_items", "idx_work_items_assignee_id", "assignee_id"},
	{"work_items", "idx_work_items_reporter_id", "reporter_id"},

	{"projects", "idx_projects_owner_id", "owner_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
