package routine

import (
	"sync"
	"time"
)

// Source supplies the routine definitions the scheduler resolves sequence
// lengths against.
type Source func() []Routine

// Scheduler owns the active-routine cursor. Every mutation re-evaluates the
// auto-advance rule, so "complete today, see the next day tomorrow" needs no
// explicit advance call.
type Scheduler struct {
	mu       sync.Mutex
	progress *Progress
	source   Source
	now      func() time.Time
}

// NewScheduler returns a scheduler reading routine definitions from source.
// A nil source behaves like an empty routine list.
func NewScheduler(source Source) *Scheduler {
	if source == nil {
		source = func() []Routine { return nil }
	}
	return &Scheduler{source: source, now: time.Now}
}

// Start activates a routine at day 0 with no completion marker.
func (s *Scheduler) Start(routineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = &Progress{RoutineID: routineID, DayIndex: 0}
	s.evaluateLocked()
}

// SetDayIndex jumps the cursor to the given day and clears the completion
// marker.
func (s *Scheduler) SetDayIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return
	}
	s.progress = &Progress{RoutineID: s.progress.RoutineID, DayIndex: index}
	s.evaluateLocked()
}

// MarkDayComplete stamps the current day as completed now. The day stays
// current for the rest of the calendar date; the rollover happens on the
// next evaluation after midnight.
func (s *Scheduler) MarkDayComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return
	}
	done := s.now()
	s.progress = &Progress{
		RoutineID:         s.progress.RoutineID,
		DayIndex:          s.progress.DayIndex,
		LastCompletedDate: &done,
	}
	s.evaluateLocked()
}

// Clear deactivates the routine.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	s.progress = nil
	s.mu.Unlock()
}

// Restore installs a previously saved cursor, applying the auto-advance rule
// so stale completions roll over immediately.
func (s *Scheduler) Restore(p *Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
	s.evaluateLocked()
}

// Progress returns a copy of the cursor, or nil when no routine is active.
// The auto-advance rule is re-evaluated first, so a read on a new day sees
// the rolled-over state.
func (s *Scheduler) Progress() *Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluateLocked()
	if s.progress == nil {
		return nil
	}
	cp := *s.progress
	return &cp
}

// IsDayCompleted reports whether the current day was completed today.
func (s *Scheduler) IsDayCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluateLocked()
	if s.progress == nil || s.progress.LastCompletedDate == nil {
		return false
	}
	last := s.progress.LastCompletedDate.Local()
	today := s.now().Local()
	return last.Year() == today.Year() && last.YearDay() == today.YearDay()
}

func (s *Scheduler) evaluateLocked() {
	s.progress = EvaluateAutoAdvance(s.progress, s.source(), s.now())
}
