package academics

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/classforge/examcore/internal/grading"
	"github.com/google/uuid"
)

var (
	ErrResultNotFound = errors.New("academic result not found")
	ErrScaleNotFound  = errors.New("no grading scale configured")
)

// Store persists academic results keyed on (student, subject, term,
// session) with upsert semantics, plus per-school grading scales.
type Store interface {
	UpsertResult(ctx context.Context, r Result) (Result, error)
	GetResult(ctx context.Context, id string) (Result, error)
	ListTermResults(ctx context.Context, studentID, term, session string) ([]Result, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Result, error)

	PutScale(ctx context.Context, schoolID string, scale grading.Scale) error
	GetScale(ctx context.Context, schoolID string) (grading.Scale, error)
}

type subjectKey struct{ studentID, subject, term, session string }

type memoryStore struct {
	mu      sync.RWMutex
	results map[subjectKey]Result
	scales  map[string]grading.Scale
}

func NewInMemoryStore() Store {
	return &memoryStore{
		results: map[subjectKey]Result{},
		scales:  map[string]grading.Scale{},
	}
}

func (m *memoryStore) UpsertResult(_ context.Context, r Result) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := subjectKey{r.StudentID, r.Subject, r.Term, r.Session}
	if prev, ok := m.results[k]; ok {
		r.ID = prev.ID
	} else if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.results[k] = r
	return r, nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.results {
		if r.ID == id {
			return r, nil
		}
	}
	return Result{}, ErrResultNotFound
}

func (m *memoryStore) ListTermResults(_ context.Context, studentID, term, session string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.results {
		if r.StudentID == studentID && r.Term == term && r.Session == session {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (m *memoryStore) UpdateStatus(ctx context.Context, id string, status Status) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, r := range m.results {
		if r.ID == id {
			r.Status = status
			m.results[k] = r
			return r, nil
		}
	}
	return Result{}, ErrResultNotFound
}

func (m *memoryStore) PutScale(_ context.Context, schoolID string, scale grading.Scale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scales[schoolID] = scale
	return nil
}

func (m *memoryStore) GetScale(_ context.Context, schoolID string) (grading.Scale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scales[schoolID]
	if !ok {
		return nil, ErrScaleNotFound
	}
	return s, nil
}
