package exam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, e Exam, now time.Time) (*Service, *fakeClock) {
	t.Helper()
	store := NewInMemoryStore()
	require.NoError(t, store.PutExam(context.Background(), e))
	clk := &fakeClock{t: now}
	return NewService(store, clk, nil), clk
}

func liveExam(now time.Time) Exam {
	return Exam{
		ID:          "ex1",
		Title:       "Geography Mid-Term",
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		MaxAttempts: 2,
		Questions: []Question{
			{ID: "q1", ExamID: "ex1", Type: QuestionMCQ,
				Options: []string{"Lagos", "Abuja", "Kano"}, CorrectAnswer: "Abuja", Points: 5},
			{ID: "q2", ExamID: "ex1", Type: QuestionEssay, Points: 10},
		},
	}
}

func TestStartSaveSubmitFlow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, clk := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)
	assert.Equal(t, 1, a.AttemptNumber)
	assert.Equal(t, AttemptInProgress, a.Status)

	ans, err := svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Abuja",
	})
	require.NoError(t, err)
	require.NotNil(t, ans.IsCorrect)
	assert.True(t, *ans.IsCorrect)
	assert.Equal(t, 5.0, ans.PointsAwarded)

	clk.t = now.Add(20 * time.Minute)
	out, err := svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, out.Result.Score)
	assert.False(t, out.Late)
	assert.Equal(t, AttemptSubmitted, out.Attempt.Status)
	require.NotNil(t, out.Attempt.TimeSpentSec)
	assert.Equal(t, 1200, *out.Attempt.TimeSpentSec)
}

func TestStartAttemptConflict(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, liveExam(now), now)

	_, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)

	_, err = svc.StartAttempt(ctx, "ex1", "stu1")
	assert.ErrorIs(t, err, ErrAttemptConflict)
}

func TestAnswerUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)

	first, err := svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Lagos",
	})
	require.NoError(t, err)

	// Retry with a corrected answer: one row, latest values.
	second, err := svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Abuja",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "resave must overwrite, not duplicate")
	assert.Equal(t, "Abuja", second.Response)
	assert.Equal(t, 5.0, second.PointsAwarded)

	out, err := svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, out.Result.Score, "only the surviving answer counts")
}

func TestSaveAnswerOutsideWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, clk := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)

	clk.t = now.Add(2 * time.Hour)
	_, err = svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Abuja",
	})
	assert.ErrorIs(t, err, ErrSubmissionWindowClosed)
}

func TestSaveAnswerRejectsForeignAttempt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)

	_, err = svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu2", QuestionID: "q1", Response: "Abuja",
	})
	assert.ErrorIs(t, err, ErrInvalidAttempt)
}

func TestNegativeMarkingFlowsIntoResult(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	e := liveExam(now)
	e.NegativeMarking = true
	svc, _ := newTestService(t, e, now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)

	ans, err := svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Lagos",
	})
	require.NoError(t, err)
	assert.Equal(t, -1.25, ans.PointsAwarded)

	out, err := svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	require.NoError(t, err)
	assert.Equal(t, -1.25, out.Result.Score, "negative contributions are kept in the total")
}

func TestLateSubmissionAcceptedAndFlagged(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, clk := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)
	_, err = svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Abuja",
	})
	require.NoError(t, err)

	clk.t = now.Add(90 * time.Minute) // past EndTime
	out, err := svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	require.NoError(t, err, "late submissions capture partial work instead of failing")
	assert.True(t, out.Late)
	assert.True(t, out.Attempt.Late)
	assert.Equal(t, 5.0, out.Result.Score)
}

func TestResubmitFailsAndKeepsResult(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)
	_, err = svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Abuja",
	})
	require.NoError(t, err)

	first, err := svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	assert.ErrorIs(t, err, ErrInvalidAttempt)

	view, err := svc.ExamStatus(ctx, "ex1", "stu1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, view.Eligibility.Status)
	assert.Equal(t, 5.0, first.Result.Score)
}

func TestSubmitHonorsClientTimeSpent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc, clk := newTestService(t, liveExam(now), now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)

	clk.t = now.Add(10 * time.Minute)
	spent := 480 // client accounted for tab-hidden time
	out, err := svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1", TimeSpentSec: &spent})
	require.NoError(t, err)
	require.NotNil(t, out.Attempt.TimeSpentSec)
	assert.Equal(t, 480, *out.Attempt.TimeSpentSec)
}

func TestExamStatusShowsResultWhenConfigured(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	e := liveExam(now)
	e.ShowResultsImmediately = true
	svc, _ := newTestService(t, e, now)

	a, err := svc.StartAttempt(ctx, "ex1", "stu1")
	require.NoError(t, err)
	_, err = svc.SaveAnswer(ctx, SaveAnswerInput{
		AttemptID: a.ID, StudentID: "stu1", QuestionID: "q1", Response: "Abuja",
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{AttemptID: a.ID, StudentID: "stu1"})
	require.NoError(t, err)

	view, err := svc.ExamStatus(ctx, "ex1", "stu1")
	require.NoError(t, err)
	require.NotNil(t, view.Result)
	assert.Equal(t, 5.0, view.Result.Score)
}
