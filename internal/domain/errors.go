package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicatePick     = errors.New("pick already recorded for this stage")
	ErrUnknownMatch      = errors.New("unknown match")
	ErrInvalidTeam       = errors.New("team is not playing in this match")
	ErrLocked            = errors.New("picks are locked for this match")
	ErrNoEligibleMatch   = errors.New("no eligible match to assign")
	ErrMalformedSchedule = errors.New("malformed schedule")
	ErrNotAssigned       = errors.New("match is not the current assignment")
	ErrInvalidUser       = errors.New("user must not be empty")
)

// ScheduleError describes why a schedule replacement was rejected.
type ScheduleError struct {
	Missing []string
	Line    int
	Reason  string
}

func (e *ScheduleError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing columns [%s]", ErrMalformedSchedule, strings.Join(e.Missing, ", "))
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrMalformedSchedule, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedSchedule, e.Reason)
}

func (e *ScheduleError) Unwrap() error { return ErrMalformedSchedule }
