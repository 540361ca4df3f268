package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedTransition_Table(t *testing.T) {
	allowed := map[WorkItemStatus]map[WorkItemStatus]bool{
		WorkItemStatusTodo: {
			WorkItemStatusTodo:       true,
			WorkItemStatusInProgress: true,
			WorkItemStatusDone:       true,
		},
		WorkItemStatusInProgress: {
			WorkItemStatusTodo:       true,
			WorkItemStatusInProgress: true,
			WorkItemStatusDone:       true,
		},
		WorkItemStatusDone: {
			WorkItemStatusTodo:       true,
			WorkItemStatusInProgress: true,
			WorkItemStatusDone:       true,
		},
	}

	for _, from := range WorkItemStatuses {
		for _, to := range WorkItemStatuses {
			name := fmt.Sprintf("%s->%s", from, to)
			assert.Equal(t, allowed[from][to], IsAllowedTransition(from, to), name)
		}
	}
}

func TestIsAllowedTransition_SameStatus(t *testing.T) {
	for _, s := range WorkItemStatuses {
		assert.True(t, IsAllowedTransition(s, s), string(s))
	}
}

func TestIsAllowedTransition_UnknownStatus(t *testing.T) {
	assert.False(t, IsAllowedTransition("blocked", WorkItemStatusDone))
	assert.False(t, IsAllowedTransition(WorkItemStatusTodo, "archived"))
	assert.False(t, IsAllowedTransition("", ""))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, WorkItemTypeBug.Valid())
	assert.False(t, WorkItemType("epic").Valid())
	assert.True(t, WorkItemPriorityCritical.Valid())
	assert.False(t, WorkItemPriority("urgent").Valid())
	assert.True(t, WorkItemStatusInProgress.Valid())
	assert.False(t, WorkItemStatus("TODO").Valid())
}

func TestWorkItem_BeforeCreate(t *testing.T) {
	item := &WorkItem{}
	assert.NoError(t, item.BeforeCreate(nil))
	assert.Len(t, item.ID, 36)
	assert.Equal(t, 1, item.Version)

	kept := &WorkItem{ID: "fixed", Version: 4}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, 4, kept.Version)
}
