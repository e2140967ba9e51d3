package exam

import "time"

type Phase string

const (
	PhaseUpcoming  Phase = "upcoming"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
)

// Window is an exam's availability at a single instant. Every consumer
// (student view, admin view, the answer gate) derives phase through
// ResolveWindow rather than comparing timestamps itself.
type Window struct {
	Phase         Phase         `json:"phase"`
	TimeRemaining time.Duration `json:"time_remaining"`
	Expired       bool          `json:"expired"`
}

// ResolveWindow computes availability from the exam config and the
// current instant. Manual control always wins over the scheduled
// window: the completed flag beats the live flag, and neither consults
// the timestamps. Time-based exams are active on the inclusive
// interval [StartTime, EndTime].
func ResolveWindow(e Exam, now time.Time) Window {
	if e.ManualControl {
		switch {
		case e.IsCompleted:
			return Window{Phase: PhaseCompleted, Expired: true}
		case e.IsLive:
			// Remaining time still reads from the schedule but never
			// goes negative while the instructor holds the exam open.
			return Window{Phase: PhaseActive, TimeRemaining: clampDur(e.EndTime.Sub(now))}
		default:
			return Window{Phase: PhaseUpcoming}
		}
	}

	switch {
	case now.Before(e.StartTime):
		return Window{Phase: PhaseUpcoming, TimeRemaining: e.StartTime.Sub(now)}
	case now.After(e.EndTime):
		return Window{Phase: PhaseCompleted, Expired: true}
	default:
		return Window{Phase: PhaseActive, TimeRemaining: e.EndTime.Sub(now)}
	}
}

func clampDur(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
