package academics

import (
	"context"
	"testing"

	"github.com/classforge/examcore/internal/grading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, Store) {
	t.Helper()
	store := NewInMemoryStore()
	return NewService(store, nil), store
}

func TestRecordComputesTotalAndGrade(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	r, err := svc.Record(ctx, RecordInput{
		StudentID: "stu1", Subject: "Mathematics", Term: "first", Session: "2025/2026",
		CAScore: 35, ExamScore: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 85.0, r.TotalScore)
	assert.Equal(t, "A", r.Grade)
	assert.Equal(t, 4.5, r.GradePoint)
	assert.Equal(t, StatusDraft, r.Status)
}

func TestRecordValidatesScoreRanges(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "Math", Term: "first", Session: "s", CAScore: 41, ExamScore: 10})
	assert.Error(t, err, "ca above 40")

	_, err = svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "Math", Term: "first", Session: "s", CAScore: 10, ExamScore: 61})
	assert.Error(t, err, "exam above 60")

	_, err = svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "Math", Term: "first", Session: "s", CAScore: -1, ExamScore: 10})
	assert.Error(t, err, "negative ca")
}

func TestRecordUpsertsAndRegrades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	in := RecordInput{StudentID: "stu1", Subject: "Physics", Term: "first", Session: "2025/2026", CAScore: 20, ExamScore: 25}
	first, err := svc.Record(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 45.0, first.TotalScore)
	assert.Equal(t, "E", first.Grade)

	in.ExamScore = 55
	second, err := svc.Record(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same key must overwrite")
	assert.Equal(t, 75.0, second.TotalScore)
	assert.Equal(t, "B", second.Grade, "grade recomputed from new inputs")
}

func TestRecordUsesSchoolScale(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, store.PutScale(ctx, "sch1", grading.Scale{
		{MinScore: 40, MaxScore: 100, Grade: "PASS", GradePoint: 1.0},
		{MinScore: 0, MaxScore: 39.99, Grade: "FAIL", GradePoint: 0.0},
	}))

	r, err := svc.Record(ctx, RecordInput{
		SchoolID: "sch1", StudentID: "stu1", Subject: "Math", Term: "first", Session: "s",
		CAScore: 30, ExamScore: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "PASS", r.Grade)
}

func TestTransitionWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	r, err := svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "Math", Term: "first", Session: "s", CAScore: 30, ExamScore: 40})
	require.NoError(t, err)

	r, err = svc.Transition(ctx, r.ID, StatusSubmitted)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, r.Status)

	// Publishing straight from submitted skips approval.
	_, err = svc.Transition(ctx, r.ID, StatusPublished)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	r, err = svc.Transition(ctx, r.ID, StatusApproved)
	require.NoError(t, err)
	r, err = svc.Transition(ctx, r.ID, StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, r.Status)
}

func TestTransitionRejectedResubmits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	r, err := svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "Math", Term: "first", Session: "s", CAScore: 30, ExamScore: 40})
	require.NoError(t, err)

	r, err = svc.Transition(ctx, r.ID, StatusSubmitted)
	require.NoError(t, err)
	r, err = svc.Transition(ctx, r.ID, StatusRejected)
	require.NoError(t, err)
	r, err = svc.Transition(ctx, r.ID, StatusSubmitted)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, r.Status)
}

func TestTermReportGPA(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// 85 -> A/4.5, 65 -> C/3.5
	_, err := svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "Math", Term: "first", Session: "s", CAScore: 35, ExamScore: 50})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordInput{StudentID: "stu1", Subject: "English", Term: "first", Session: "s", CAScore: 25, ExamScore: 40})
	require.NoError(t, err)

	report, err := svc.TermReport(ctx, "stu1", "first", "s")
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)
	assert.Equal(t, 4.0, report.GPA)
	assert.Equal(t, "B", report.OverallGrade)
}

func TestTermReportEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	report, err := svc.TermReport(ctx, "ghost", "first", "s")
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0.0, report.GPA)
	assert.Equal(t, "F", report.OverallGrade)
}
