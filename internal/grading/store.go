package grading

import (
	"context"
	"sort"
	"sync"
)

type ResultStore interface {
	// SaveResult upserts by result ID.
	SaveResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, id string) (Result, error)
	// ListResults returns all results, newest submission first.
	ListResults(ctx context.Context) ([]Result, error)
	ListResultsByUser(ctx context.Context, userID string) ([]Result, error)
	// ListPending returns results with is_evaluated=false, oldest submission
	// first for deterministic grading queues.
	ListPending(ctx context.Context) ([]Result, error)
	UpsertEvaluation(ctx context.Context, resultID string, e Evaluation) error
	// GetEvaluations reads one consistent snapshot of all evaluations
	// recorded for the result.
	GetEvaluations(ctx context.Context, resultID string) (map[string]Evaluation, error)
	SetPublished(ctx context.Context, resultID string) error
}

type memoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
	evals   map[string]map[string]Evaluation // resultID -> questionID -> evaluation
}

func NewMemoryStore() ResultStore {
	return &memoryStore{
		results: map[string]Result{},
		evals:   map[string]map[string]Evaluation{},
	}
}

func (m *memoryStore) SaveResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return Result{}, ErrResultNotFound
	}
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	sortByCompletion(out, false)
	return out, nil
}

func (m *memoryStore) ListResultsByUser(_ context.Context, userID string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortByCompletion(out, false)
	return out, nil
}

func (m *memoryStore) ListPending(_ context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.results {
		if !r.IsEvaluated {
			out = append(out, r)
		}
	}
	sortByCompletion(out, true)
	return out, nil
}

func (m *memoryStore) UpsertEvaluation(_ context.Context, resultID string, e Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[resultID]; !ok {
		return ErrResultNotFound
	}
	byQ := m.evals[resultID]
	if byQ == nil {
		byQ = map[string]Evaluation{}
		m.evals[resultID] = byQ
	}
	byQ[e.QuestionID] = e
	return nil
}

func (m *memoryStore) GetEvaluations(_ context.Context, resultID string) (map[string]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.results[resultID]; !ok {
		return nil, ErrResultNotFound
	}
	out := make(map[string]Evaluation, len(m.evals[resultID]))
	for k, v := range m.evals[resultID] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) SetPublished(_ context.Context, resultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[resultID]
	if !ok {
		return ErrResultNotFound
	}
	r.Published = true
	m.results[resultID] = r
	return nil
}

func sortByCompletion(rs []Result, ascending bool) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.CompletedAt != b.CompletedAt {
			if ascending {
				return a.CompletedAt < b.CompletedAt
			}
			return a.CompletedAt > b.CompletedAt
		}
		return a.ID < b.ID
	})
}
