package service

import (
	"sort"
	"vct-survivor/internal/domain"
)

// Judge derives one Result per pick. A pick whose match is missing from the
// schedule, or has no winner yet, is Waiting.
func Judge(schedule *domain.Schedule, picks []domain.Pick) []domain.Result {
	results := make([]domain.Result, 0, len(picks))
	for _, p := range picks {
		outcome := domain.OutcomeWaiting
		if m, ok := schedule.Match(p.MatchID); ok && m.Resolved() {
			if p.Team == m.Winner {
				outcome = domain.OutcomeWin
			} else {
				outcome = domain.OutcomeLoss
			}
		}
		results = append(results, domain.Result{
			User:     p.User,
			StageID:  p.StageID,
			MatchID:  p.MatchID,
			PickTeam: p.Team,
			Outcome:  outcome,
		})
	}
	return results
}

// IsAlive is true for users with no Loss, including users with no picks.
func IsAlive(user string, results []domain.Result) bool {
	for _, r := range results {
		if r.User == user && r.Outcome == domain.OutcomeLoss {
			return false
		}
	}
	return true
}

// Leaderboard orders alive users first, then by wins descending, then by user.
func Leaderboard(results []domain.Result) []domain.LeaderboardEntry {
	byUser := make(map[string]*domain.LeaderboardEntry)
	for _, r := range results {
		e, ok := byUser[r.User]
		if !ok {
			e = &domain.LeaderboardEntry{User: r.User}
			byUser[r.User] = e
		}
		switch r.Outcome {
		case domain.OutcomeWin:
			e.Wins++
		case domain.OutcomeLoss:
			if e.FirstLossStage == nil || r.StageID < *e.FirstLossStage {
				stage := r.StageID
				e.FirstLossStage = &stage
			}
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		e.Alive = e.FirstLossStage == nil
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Alive != b.Alive {
			return a.Alive
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.User < b.User
	})
	return entries
}

func Stats(user string, results []domain.Result) domain.UserStats {
	stats := domain.UserStats{User: user}
	for _, r := range results {
		if r.User != user {
			continue
		}
		stats.Picks++
		switch r.Outcome {
		case domain.OutcomeWin:
			stats.Wins++
		case domain.OutcomeLoss:
			stats.Losses++
		default:
			stats.Pending++
		}
	}
	stats.Alive = stats.Losses == 0
	return stats
}
