// Package suggest produces AI-assisted scheduling advice for a user's day.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

// ErrNoTasks is returned when there is nothing to advise on.
var ErrNoTasks = errors.New("no tasks to suggest for")

// chatClient is the slice of the OpenAI client the service needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service turns a task list into short scheduling advice via a chat model.
type Service struct {
	client chatClient
	model  string
}

// New creates a suggestion service from an API key.
func New(apiKey string) *Service {
	return &Service{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// ForTasks asks the model for scheduling advice on today's incomplete tasks.
func (s *Service) ForTasks(ctx context.Context, tasks []domain.Task) (string, error) {
	var lines []string
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		line := "- " + t.Title
		if t.StartTime != "" {
			line += " at " + domain.FormatClock12h(t.StartTime)
		}
		if t.Priority != "" {
			line += " (" + domain.NormalizePriority(t.Priority) + " priority)"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", ErrNoTasks
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a concise day-planning assistant. Suggest an order and time blocks for the user's tasks in at most five short sentences.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "My tasks for today:\n" + strings.Join(lines, "\n"),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
