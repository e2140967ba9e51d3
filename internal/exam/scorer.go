package exam

import (
	"fmt"
	"strconv"
	"strings"
)

// negativeMarkRatio is the fixed penalty applied to a wrong objective
// answer when the exam has negative marking: one quarter of the
// question's points. There is no per-school override.
const negativeMarkRatio = 0.25

// Scored is the outcome of scoring one response.
type Scored struct {
	IsCorrect     *bool
	PointsAwarded float64
	NeedsManual   bool
}

// ScoreAnswer grades a single response against its question. Only
// objective types are auto-scored; essay and short-answer come back
// ungraded for manual review. The response may be an option index
// (MCQ), which is resolved to the option's value before comparison —
// a raw index is never compared against a value-typed answer key.
func ScoreAnswer(q Question, response any, negativeMarking bool) Scored {
	if !q.Type.IsObjective() {
		return Scored{NeedsManual: true}
	}

	resolved := resolveResponse(q, response)
	correct := responsesEqual(q.Type, resolved, q.CorrectAnswer)

	s := Scored{IsCorrect: &correct}
	switch {
	case correct:
		s.PointsAwarded = q.Points
	case negativeMarking:
		s.PointsAwarded = -negativeMarkRatio * q.Points
	}
	return s
}

// resolveResponse canonicalizes a raw response. For MCQ, an integer
// response (JSON number or digit string) is treated as an index into
// the option list.
func resolveResponse(q Question, response any) string {
	if q.Type == QuestionMCQ {
		if idx, ok := asIndex(response); ok && idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	return responseText(response)
}

func responsesEqual(t QuestionType, got, want string) bool {
	got = strings.TrimSpace(got)
	want = strings.TrimSpace(want)
	if t == QuestionTrueFalse {
		return strings.EqualFold(got, want)
	}
	return got == want
}

func asIndex(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64: // JSON numbers decode to float64
		if x == float64(int(x)) {
			return int(x), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func responseText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
