package grading

// GPA is the arithmetic mean of the supplied grade points. An empty
// slice yields 0, never NaN.
func GPA(gradePoints []float64) float64 {
	if len(gradePoints) == 0 {
		return 0
	}
	sum := 0.0
	for _, gp := range gradePoints {
		sum += gp
	}
	return sum / float64(len(gradePoints))
}

// OverallGradeFromGPA bands a GPA into a letter. This is a separate,
// wider mapping than the raw-score scale: a GPA aggregates grade
// points that already passed through a scale, so the two tables are
// intentionally not shared.
func OverallGradeFromGPA(gpa float64) string {
	switch {
	case gpa >= 4.5:
		return "A"
	case gpa >= 3.5:
		return "B"
	case gpa >= 2.5:
		return "C"
	case gpa >= 1.5:
		return "D"
	case gpa >= 1.0:
		return "E"
	default:
		return "F"
	}
}
