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
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoWorkItemsGenerated = errors.New("AI did not generate any work items")
	ErrAINoValidWorkItems     = errors.New("no valid work items could be created from AI output")
)

// GenerateWorkItems drafts work items for a project from free text. Drafts are
// normalized to valid field values and are not stored.
func (s *WorkItemService) GenerateWorkItems(ctx context.Context, projectID, userID, text string) ([]GeneratedWorkItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierrors.MissingField("text")
	}
	if err := s.authorizeProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.generator.GenerateWorkItemsFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate work items: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoWorkItemsGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedWorkItems {
		drafts = drafts[:constants.MaxAIGeneratedWorkItems]
	}

	valid := make([]GeneratedWorkItem, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = truncateRunes(strings.TrimSpace(draft.Title), constants.MaxWorkItemTitleLength)
		if draft.Title == "" {
			continue
		}
		draft.Description = truncateRunes(draft.Description, constants.MaxWorkItemDescriptionLength)
		if !models.WorkItemType(draft.Type).Valid() {
			draft.Type = string(models.WorkItemTypeTask)
		}
		if !models.WorkItemPriority(draft.Priority).Valid() {
			draft.Priority = string(models.WorkItemPriorityMedium)
		}
		if validateStoryPoints(draft.StoryPoints) != nil {
			draft.StoryPoints = nil
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidWorkItems
	}
	return valid, nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
