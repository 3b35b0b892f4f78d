package model

import "fmt"

// TaskStatus is a strictly forward-moving enumeration. The dedicated
// status-update path may only advance a task; moving backward is a hard
// error. The general update path is an administrative override and is not
// constrained by this rule.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "NOT_STARTED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// order maps each status to its position in the forward-only progression.
var order = map[TaskStatus]int{
	StatusNotStarted: 0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// ErrStatusRegression is returned when a status update would move a task
// backward in the NOT_STARTED → IN_PROGRESS → COMPLETED progression.
var ErrStatusRegression = fmt.Errorf("task status can only move forward")

// CanAdvance reports whether the forward-only path permits moving from one
// status to another. Staying in place is allowed; any regression is not.
func CanAdvance(from, to TaskStatus) bool {
	fi, ok := order[from]
	if !ok {
		return false
	}
	ti, ok := order[to]
	if !ok {
		return false
	}
	return ti >= fi
}

// CheckAdvance validates a forward-only transition, returning
// ErrStatusRegression (wrapped with the offending pair) when it would move
// the task backward.
func CheckAdvance(from, to TaskStatus) error {
	if !from.IsValid() {
		return fmt.Errorf("invalid status: %s", from)
	}
	if !to.IsValid() {
		return fmt.Errorf("invalid status: %s", to)
	}
	if !CanAdvance(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrStatusRegression)
	}
	return nil
}

// ParseTaskStatus validates a status name from user input.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("unknown status: %q (valid: NOT_STARTED, IN_PROGRESS, COMPLETED)", s)
	}
	return st, nil
}
