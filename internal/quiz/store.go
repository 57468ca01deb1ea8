package quiz

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("quiz not found")

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz is the student-safe read: answer keys and explanations stripped.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	// GetQuizWithAnswers is the full quiz, for scoring and instructor views.
	GetQuizWithAnswers(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context) ([]Summary, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
	order   []string
}

func NewMemoryStore() Store {
	return &memoryStore{quizzes: map[string]Quiz{}}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[q.ID]; !ok {
		m.order = append(m.order, q.ID)
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := m.GetQuizWithAnswers(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	return q.Sanitized(), nil
}

func (m *memoryStore) GetQuizWithAnswers(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.quizzes[id].Summary())
	}
	return out, nil
}
