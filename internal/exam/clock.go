package exam

import "time"

// Clock supplies the current instant. Injected so every temporal
// decision (window phase, deadlines, timestamps) is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
