package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

type fakeChat struct {
	lastReq openai.ChatCompletionRequest
	reply   string
	err     error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func TestForTasks(t *testing.T) {
	chat := &fakeChat{reply: "Start with the gym session, then review notes.\n"}
	s := &Service{client: chat, model: openai.GPT4oMini}

	tasks := []domain.Task{
		{Title: "Gym session", StartTime: "07:00", Priority: "high"},
		{Title: "Review notes", Priority: "low"},
		{Title: "Done already", Completed: true},
	}
	advice, err := s.ForTasks(context.Background(), tasks)
	if err != nil {
		t.Fatalf("ForTasks: %v", err)
	}
	if advice != "Start with the gym session, then review notes." {
		t.Fatalf("advice = %q", advice)
	}

	prompt := chat.lastReq.Messages[1].Content
	if !strings.Contains(prompt, "Gym session at 7:00 AM") {
		t.Fatalf("prompt missing task line: %q", prompt)
	}
	if strings.Contains(prompt, "Done already") {
		t.Fatalf("completed task leaked into prompt: %q", prompt)
	}
}

func TestForTasks_Empty(t *testing.T) {
	s := &Service{client: &fakeChat{}, model: openai.GPT4oMini}
	if _, err := s.ForTasks(context.Background(), nil); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("want ErrNoTasks, got %v", err)
	}
	done := []domain.Task{{Title: "x", Completed: true}}
	if _, err := s.ForTasks(context.Background(), done); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("want ErrNoTasks for all-completed, got %v", err)
	}
}
