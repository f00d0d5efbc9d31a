package service

import (
	"time"
	"vct-survivor/internal/domain"
)

// IsEligible reports whether m can still be assigned: no winner and a start
// time strictly after now.
func IsEligible(m domain.Match, now time.Time) bool {
	return !m.Resolved() && m.HasStartTime() && m.StartTime.After(now)
}

func EligibleMatches(schedule *domain.Schedule, stageID int, now time.Time) []domain.Match {
	var pool []domain.Match
	for _, m := range schedule.StageMatches(stageID) {
		if IsEligible(m, now) {
			pool = append(pool, m)
		}
	}
	return pool
}

// ActiveStage is the lowest stage id holding an eligible match, ties going to
// the earliest eligible start.
func ActiveStage(schedule *domain.Schedule, now time.Time) (domain.Stage, bool) {
	var best domain.Match
	found := false
	for _, m := range schedule.Matches() {
		if !IsEligible(m, now) {
			continue
		}
		if !found ||
			m.StageID < best.StageID ||
			(m.StageID == best.StageID && m.StartTime.Before(best.StartTime)) {
			best = m
			found = true
		}
	}
	if !found {
		return domain.Stage{}, false
	}

	stage, ok := schedule.Stage(best.StageID)
	if !ok {
		stage = domain.Stage{ID: best.StageID, Name: best.StageName}
	}
	return stage, true
}
