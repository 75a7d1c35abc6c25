package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/repository"
)

const (
	FallbackDescription     = "Could not generate suggestions at this time."
	FallbackRecommendations = "Could not generate recommendations at this time. Please try again later."
	NoTasksRecommendation   = "Add some tasks to get AI recommendations."
)

// TextGenerator - LLM, которая по промпту возвращает текст
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AssistService struct {
	log      *slog.Logger
	gen      TextGenerator
	taskRepo repository.ITaskRepository
}

// NewAssistService - gen может быть nil, тогда ассистент отключён
func NewAssistService(log *slog.Logger, gen TextGenerator, taskRepo repository.ITaskRepository) *AssistService {
	return &AssistService{
		log:      log,
		gen:      gen,
		taskRepo: taskRepo,
	}
}

func (s *AssistService) Enabled() bool {
	return s.gen != nil
}

// SuggestDescription предлагает описание задачи по её заголовку.
// Сбой LLM не ошибка: возвращается фиксированный текст.
func (s *AssistService) SuggestDescription(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", entity.ErrInvalidTaskData)
	}
	if !s.Enabled() {
		return "", entity.ErrAssistUnavailable
	}

	text, err := s.gen.Generate(ctx, descriptionPrompt(title))
	if err != nil {
		s.log.Warn("description suggestion failed", "error", err)
		return FallbackDescription, nil
	}
	return text, nil
}

// Recommend анализирует все задачи и даёт советы по планированию
func (s *AssistService) Recommend(ctx context.Context) (string, error) {
	if !s.Enabled() {
		return "", entity.ErrAssistUnavailable
	}

	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return NoTasksRecommendation, nil
	}

	prompt, err := recommendationPrompt(tasks)
	if err != nil {
		return "", err
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("recommendations failed", "tasks", len(tasks), "error", err)
		return FallbackRecommendations, nil
	}
	return text, nil
}

func descriptionPrompt(title string) string {
	return fmt.Sprintf(`I'm creating a task with the title: %q. `+
		`Please suggest a detailed description for this task that would help me complete it effectively. `+
		`Keep it under 100 words. DO NOT GIVE ANY OTHER TEXT EXCEPT THE DESCRIPTION. `+
		`You are a helpful AI assistant that specializes in productivity and task management. `+
		`Provide concise, practical suggestions.`, title)
}

type promptTask struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    entity.Priority `json:"priority"`
	Status      string          `json:"status"`
	DueDate     string          `json:"dueDate"`
	Completed   bool            `json:"completed"`
}

func recommendationPrompt(tasks []entity.Task) (string, error) {
	formatted := make([]promptTask, 0, len(tasks))
	for _, t := range tasks {
		due := "No due date"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		formatted = append(formatted, promptTask{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Status:      string(t.Status),
			DueDate:     due,
			Completed:   t.Completed,
		})
	}
	raw, err := json.MarshalIndent(formatted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format tasks: %w", err)
	}

	var b strings.Builder
	b.WriteString("Here are my current tasks:\n")
	b.Write(raw)
	b.WriteString("\n\nBased on these tasks, please provide:\n")
	b.WriteString("1. Suggestions for optimizing my schedule\n")
	b.WriteString("2. Recommendations for task prioritization\n")
	b.WriteString("3. Any insights on how I could improve my productivity\n")
	b.WriteString("4. Identify any potential bottlenecks or conflicts\n\n")
	b.WriteString("Keep your response concise and practical. DO NOT RESPOND WITH ANYTHING OTHER THAN THE RECOMMENDATIONS. ")
	b.WriteString("You are a helpful AI assistant that specializes in productivity and task management. ")
	b.WriteString("Don't use any special characters for bold or italics etc.")
	return b.String(), nil
}
