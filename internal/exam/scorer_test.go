package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcqQuestion(points float64) Question {
	return Question{
		ID:            "q1",
		Type:          QuestionMCQ,
		Options:       []string{"Lagos", "Abuja", "Kano", "Ibadan"},
		CorrectAnswer: "Abuja",
		Points:        points,
	}
}

func TestScoreAnswerMCQ(t *testing.T) {
	q := mcqQuestion(5)

	tests := []struct {
		name     string
		response any
		negative bool
		correct  bool
		points   float64
	}{
		{"value response correct", "Abuja", false, true, 5},
		{"index response resolves to option", 1, false, true, 5},
		{"json number index", float64(1), false, true, 5},
		{"digit string index", "1", false, true, 5},
		{"wrong value no penalty", "Lagos", false, false, 0},
		{"wrong index with negative marking", 0, true, false, -1.25},
		{"wrong value with negative marking", "Kano", true, false, -1.25},
		{"out of range index compared as text", 9, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ScoreAnswer(q, tt.response, tt.negative)
			require.NotNil(t, s.IsCorrect)
			assert.Equal(t, tt.correct, *s.IsCorrect)
			assert.Equal(t, tt.points, s.PointsAwarded)
			assert.False(t, s.NeedsManual)
		})
	}
}

func TestScoreAnswerNegativeMarkingIsQuarterOfPoints(t *testing.T) {
	s := ScoreAnswer(mcqQuestion(8), "Lagos", true)
	assert.Equal(t, -2.0, s.PointsAwarded)
}

func TestScoreAnswerTrueFalse(t *testing.T) {
	q := Question{ID: "q2", Type: QuestionTrueFalse, CorrectAnswer: "true", Points: 2}

	s := ScoreAnswer(q, "True", false)
	require.NotNil(t, s.IsCorrect)
	assert.True(t, *s.IsCorrect)
	assert.Equal(t, 2.0, s.PointsAwarded)

	s = ScoreAnswer(q, true, false) // JSON boolean
	require.NotNil(t, s.IsCorrect)
	assert.True(t, *s.IsCorrect)

	s = ScoreAnswer(q, "false", true)
	assert.Equal(t, -0.5, s.PointsAwarded)
}

func TestScoreAnswerSubjectiveTypesWaitForManualGrading(t *testing.T) {
	for _, typ := range []QuestionType{QuestionEssay, QuestionShortAnswer} {
		q := Question{ID: "q3", Type: typ, Points: 10}
		s := ScoreAnswer(q, "some long response", true)
		assert.Nil(t, s.IsCorrect, "%s must stay ungraded", typ)
		assert.Equal(t, 0.0, s.PointsAwarded)
		assert.True(t, s.NeedsManual)
	}
}
