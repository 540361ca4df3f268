package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// WorkItemGenerator turns free text into draft work items.
type WorkItemGenerator interface {
	GenerateWorkItemsFromText(ctx context.Context, text string) ([]GeneratedWorkItem, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

type GeneratedWorkItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	StoryPoints *int   `json:"story_points"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig builds the service from a full client config, which
// allows pointing it at a compatible endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// GenerateWorkItemsFromText asks the model to break text into work items
func (s *AIService) GenerateWorkItemsFromText(ctx context.Context, text string) ([]GeneratedWorkItem, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You are a project planning assistant. Break the following text into concrete work items for a Kanban board.

Current time: %s

Text:
%s

Return a JSON array in this format:
[
  {
    "title": "short title, at most 200 characters",
    "description": "what needs to be done",
    "type": "task | bug | story",
    "priority": "low | medium | high | critical",
    "story_points": 1-100 or null
  }
]

Rules:
- Return [] when the text contains no work
- Return only JSON, without any explanation`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var items []GeneratedWorkItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return items, nil
}

// stripCodeFence removes a surrounding ```json fence the model sometimes adds
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
