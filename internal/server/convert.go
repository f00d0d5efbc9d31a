package server

import (
	"time"
	"vct-survivor/internal/domain"
	"vct-survivor/internal/service"
	"vct-survivor/internal/survivorv1"
)

func toWireStage(s *domain.Stage) *survivorv1.Stage {
	if s == nil {
		return nil
	}
	return &survivorv1.Stage{ID: s.ID, Name: s.Name}
}

func toWireMatch(m domain.Match) survivorv1.Match {
	return survivorv1.Match{
		ID:           m.ID,
		StageID:      m.StageID,
		StageName:    m.StageName,
		TeamA:        m.TeamA,
		TeamB:        m.TeamB,
		StartTime:    m.StartTime,
		StartTimeRaw: m.StartTimeRaw,
		Winner:       m.Winner,
	}
}

func toWireAssigned(a *service.AssignedMatch) *survivorv1.AssignedMatch {
	if a == nil {
		return nil
	}
	out := &survivorv1.AssignedMatch{
		User:         a.Assignment.User,
		StageID:      a.Assignment.StageID,
		AssignedAt:   a.Assignment.AssignedAt,
		Match:        toWireMatch(a.Match),
		LockDeadline: a.LockDeadline,
		CanPick:      a.CanPick,
		Unscheduled:  a.Unscheduled,
	}
	if !a.LockDeadlineLocal.IsZero() {
		out.LockDeadlineLocal = a.LockDeadlineLocal.Format(time.RFC3339)
	}
	return out
}

func toWirePick(p *domain.Pick) *survivorv1.Pick {
	if p == nil {
		return nil
	}
	return &survivorv1.Pick{
		ID:       p.ID,
		User:     p.User,
		StageID:  p.StageID,
		MatchID:  p.MatchID,
		Team:     p.Team,
		PickedAt: p.PickedAt,
	}
}

func toWireResults(results []domain.Result) []survivorv1.Result {
	out := make([]survivorv1.Result, 0, len(results))
	for _, r := range results {
		out = append(out, survivorv1.Result{
			User:     r.User,
			StageID:  r.StageID,
			MatchID:  r.MatchID,
			PickTeam: r.PickTeam,
			Outcome:  string(r.Outcome),
		})
	}
	return out
}

func toWireLeaderboard(entries []domain.LeaderboardEntry) []survivorv1.LeaderboardEntry {
	out := make([]survivorv1.LeaderboardEntry, 0, len(entries))
	for i, e := range entries {
		out = append(out, survivorv1.LeaderboardEntry{
			Rank:           i + 1,
			User:           e.User,
			Alive:          e.Alive,
			Wins:           e.Wins,
			FirstLossStage: e.FirstLossStage,
		})
	}
	return out
}
