// Package grading maps raw scores to letter grades and aggregates
// grade points into a GPA. The scale is data, not behavior: schools
// supply their own band table and the engine scans it.
package grading

import "sort"

// Band maps a percentage range to a letter grade and grade point.
type Band struct {
	MinScore   float64 `json:"min_score"`
	MaxScore   float64 `json:"max_score"`
	Grade      string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
	Remark     string  `json:"remark"`
}

// Scale is an ordered band table, highest MinScore first. Bands must
// be contiguous and cover [0,100] for a well-formed scale.
type Scale []Band

// failBand is what GradeFor degrades to when no band matches: a grade
// must always be producible, so scale misconfiguration yields an F
// rather than an error.
var failBand = Band{Grade: "F", GradePoint: 0.0, Remark: "Fail"}

// DefaultScale is the fallback seven-band table used when a school
// has not configured its own.
func DefaultScale() Scale {
	return Scale{
		{MinScore: 90, MaxScore: 100, Grade: "A+", GradePoint: 5.0, Remark: "Outstanding"},
		{MinScore: 80, MaxScore: 89.99, Grade: "A", GradePoint: 4.5, Remark: "Excellent"},
		{MinScore: 70, MaxScore: 79.99, Grade: "B", GradePoint: 4.0, Remark: "Very Good"},
		{MinScore: 60, MaxScore: 69.99, Grade: "C", GradePoint: 3.5, Remark: "Good"},
		{MinScore: 50, MaxScore: 59.99, Grade: "D", GradePoint: 3.0, Remark: "Fair"},
		{MinScore: 45, MaxScore: 49.99, Grade: "E", GradePoint: 2.0, Remark: "Pass"},
		{MinScore: 0, MaxScore: 44.99, Grade: "F", GradePoint: 0.0, Remark: "Fail"},
	}
}

// GradeFor classifies a score out of scoresObtainable against the
// scale. The scale is scanned highest band first and the first band
// containing the percentage wins. A percentage no band covers falls
// closed to F/0.0.
func GradeFor(score, scoresObtainable float64, scale Scale) Band {
	if scoresObtainable <= 0 || len(scale) == 0 {
		return failBand
	}
	pct := score / scoresObtainable * 100

	ordered := make(Scale, len(scale))
	copy(ordered, scale)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].MinScore > ordered[j].MinScore })

	for _, b := range ordered {
		if pct >= b.MinScore && pct <= b.MaxScore {
			return b
		}
	}
	return failBand
}
