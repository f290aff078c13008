package chrono

import "time"

// API is what anything depending on the system clock should use.
type API interface {
	Now() time.Time
}

// Standard reads the system clock.
type Standard struct{}

func (Standard) Now() time.Time {
	return time.Now()
}

// Stepped is a fake clock that advances by Step on every call to Now.
type Stepped struct {
	Current time.Time
	Step    time.Duration
}

func (s *Stepped) Now() time.Time {
	now := s.Current
	s.Current = s.Current.Add(s.Step)
	return now
}
