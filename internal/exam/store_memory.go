package exam

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memoryStore keeps everything in keyed maps with the same upsert and
// conflict semantics as the SQL store. Used in tests and offline mode.
type memoryStore struct {
	mu       sync.RWMutex
	exams    map[string]Exam
	attempts map[string]Attempt
	answers  map[answerKey]Answer
	results  map[resultKey]Result
}

type answerKey struct{ studentID, questionID, examID string }
type resultKey struct{ studentID, examID string }

func NewInMemoryStore() Store {
	return &memoryStore{
		exams:    map[string]Exam{},
		attempts: map[string]Attempt{},
		answers:  map[answerKey]Answer{},
		results:  map[resultKey]Result{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, examID, questionID string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[examID]
	if !ok {
		return Question{}, ErrExamNotFound
	}
	for _, q := range e.Questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return Question{}, ErrQuestionNotFound
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.attempts {
		if other.ExamID == a.ExamID && other.StudentID == a.StudentID && other.Status == AttemptInProgress {
			return Attempt{}, ErrAttemptConflict
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, examID, studentID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for _, a := range m.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber > out[j].AttemptNumber })
	return out, nil
}

func (m *memoryStore) UpsertAnswer(_ context.Context, a Answer) (Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := answerKey{a.StudentID, a.QuestionID, a.ExamID}
	if prev, ok := m.answers[k]; ok {
		a.ID = prev.ID
	} else if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.answers[k] = a
	return a, nil
}

func (m *memoryStore) ListAnswers(_ context.Context, attemptID string) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Answer
	for _, a := range m.answers {
		if a.AttemptID == attemptID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (m *memoryStore) FinalizeAttempt(_ context.Context, p FinalizeParams) (Attempt, Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[p.AttemptID]
	if !ok {
		return Attempt{}, Result{}, ErrAttemptNotFound
	}
	if a.Status != AttemptInProgress {
		return Attempt{}, Result{}, ErrInvalidAttempt
	}

	total := 0.0
	for _, ans := range m.answers {
		if ans.AttemptID == p.AttemptID {
			total += ans.PointsAwarded
		}
	}

	submittedAt := p.SubmittedAt
	timeSpent := p.TimeSpentSec
	a.Status = AttemptSubmitted
	a.SubmittedAt = &submittedAt
	a.TimeSpentSec = &timeSpent
	a.Late = p.Late
	m.attempts[a.ID] = a

	rk := resultKey{a.StudentID, a.ExamID}
	r, ok := m.results[rk]
	if !ok {
		r = Result{ID: uuid.NewString(), ExamID: a.ExamID, StudentID: a.StudentID}
	}
	r.Score = total
	r.GradedAt = p.SubmittedAt
	m.results[rk] = r
	return a, r, nil
}

func (m *memoryStore) GetResult(_ context.Context, examID, studentID string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[resultKey{studentID, examID}]
	if !ok {
		return Result{}, ErrResultNotFound
	}
	return r, nil
}
