package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.GenerateFunc(ctx, prompt)
}

func TestSuggestDescription(t *testing.T) {
	var prompt string
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "Write the quarterly report.", nil
	}}
	service := NewAssistService(discardLogger(), gen, &MockTaskRepository{})

	text, err := service.SuggestDescription(context.Background(), "Quarterly report")
	require.NoError(t, err)
	assert.Equal(t, "Write the quarterly report.", text)
	assert.Contains(t, prompt, `"Quarterly report"`)
	assert.Contains(t, prompt, "under 100 words")
}

func TestSuggestDescriptionFallback(t *testing.T) {
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, p string) (string, error) {
		return "", errors.New("timeout")
	}}
	service := NewAssistService(discardLogger(), gen, &MockTaskRepository{})

	text, err := service.SuggestDescription(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, FallbackDescription, text)

	_, err = service.SuggestDescription(context.Background(), "  ")
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)
}

func TestAssistDisabled(t *testing.T) {
	service := NewAssistService(discardLogger(), nil, &MockTaskRepository{})

	_, err := service.SuggestDescription(context.Background(), "x")
	assert.ErrorIs(t, err, entity.ErrAssistUnavailable)

	_, err = service.Recommend(context.Background())
	assert.ErrorIs(t, err, entity.ErrAssistUnavailable)
}

func TestRecommend(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &MockTaskRepository{
		ListFunc: func(ctx context.Context) ([]entity.Task, error) {
			return []entity.Task{
				{ID: 1, Title: "Pay rent", Priority: entity.PriorityHigh, DueDate: &due},
				{ID: 2, Title: "Read book", Priority: entity.PriorityLow},
			}, nil
		},
	}
	var prompt string
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "Pay rent first.", nil
	}}
	service := NewAssistService(discardLogger(), gen, repo)

	text, err := service.Recommend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pay rent first.", text)
	assert.Contains(t, prompt, "2024-03-10")
	assert.Contains(t, prompt, "No due date")
	assert.Contains(t, prompt, "bottlenecks")
}

func TestRecommendNoTasks(t *testing.T) {
	called := false
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, p string) (string, error) {
		called = true
		return "", nil
	}}
	repo := &MockTaskRepository{ListFunc: func(ctx context.Context) ([]entity.Task, error) {
		return []entity.Task{}, nil
	}}
	service := NewAssistService(discardLogger(), gen, repo)

	text, err := service.Recommend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoTasksRecommendation, text)
	assert.False(t, called)
}

func TestRecommendFallback(t *testing.T) {
	repo := &MockTaskRepository{ListFunc: func(ctx context.Context) ([]entity.Task, error) {
		return []entity.Task{{ID: 1, Title: "a"}}, nil
	}}
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, p string) (string, error) {
		return "", errors.New("503")
	}}
	service := NewAssistService(discardLogger(), gen, repo)

	text, err := service.Recommend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FallbackRecommendations, text)
}
