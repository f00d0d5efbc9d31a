package domain

import (
	"sort"
	"strings"
	"time"
)

type Stage struct {
	ID   int
	Name string
}

type Match struct {
	ID        string
	StageID   int
	StageName string
	TeamA     string
	TeamB     string
	// zero when StartTimeRaw could not be parsed
	StartTime    time.Time
	StartTimeRaw string
	Winner       string
}

func (m Match) HasStartTime() bool { return !m.StartTime.IsZero() }

func (m Match) Resolved() bool { return m.Winner != "" }

func (m Match) HasTeam(team string) bool {
	return team != "" && (team == m.TeamA || team == m.TeamB)
}

// LockDeadline is the last instant before which a pick is accepted. The
// second return is false when the match has no usable start time.
func (m Match) LockDeadline(window time.Duration) (time.Time, bool) {
	if !m.HasStartTime() {
		return time.Time{}, false
	}
	return m.StartTime.Add(-window), true
}

type Assignment struct {
	User       string
	StageID    int
	MatchID    string
	AssignedAt time.Time
}

type Pick struct {
	ID       string // nanoid
	User     string
	StageID  int
	MatchID  string
	Team     string
	PickedAt time.Time
}

type Outcome string

const (
	OutcomeWaiting Outcome = "Waiting"
	OutcomeWin     Outcome = "Win"
	OutcomeLoss    Outcome = "Loss"
)

type Result struct {
	User     string
	StageID  int
	MatchID  string
	PickTeam string
	Outcome  Outcome
}

type LeaderboardEntry struct {
	User           string
	Alive          bool
	Wins           int
	FirstLossStage *int
}

type UserStats struct {
	User    string
	Alive   bool
	Picks   int
	Wins    int
	Losses  int
	Pending int
}

// Schedule is an immutable snapshot of the schedule table.
type Schedule struct {
	matches []Match
	stages  []Stage
	byID    map[string]int
	loaded  time.Time
}

// NewSchedule orders matches by (stage id, raw start time) and names each
// stage after its first row.
func NewSchedule(matches []Match, loadedAt time.Time) *Schedule {
	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StageID != ordered[j].StageID {
			return ordered[i].StageID < ordered[j].StageID
		}
		return ordered[i].StartTimeRaw < ordered[j].StartTimeRaw
	})

	s := &Schedule{
		matches: ordered,
		byID:    make(map[string]int, len(ordered)),
		loaded:  loadedAt,
	}
	seen := make(map[int]bool)
	for i, m := range ordered {
		s.byID[m.ID] = i
		if !seen[m.StageID] {
			seen[m.StageID] = true
			s.stages = append(s.stages, Stage{ID: m.StageID, Name: m.StageName})
		}
	}
	return s
}

func (s *Schedule) Matches() []Match {
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

func (s *Schedule) Stages() []Stage {
	out := make([]Stage, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *Schedule) Match(id string) (Match, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Match{}, false
	}
	return s.matches[i], true
}

func (s *Schedule) Stage(id int) (Stage, bool) {
	for _, st := range s.stages {
		if st.ID == id {
			return st, true
		}
	}
	return Stage{}, false
}

func (s *Schedule) StageMatches(stageID int) []Match {
	var out []Match
	for _, m := range s.matches {
		if m.StageID == stageID {
			out = append(out, m)
		}
	}
	return out
}

func (s *Schedule) LoadedAt() time.Time { return s.loaded }

func (s *Schedule) Len() int { return len(s.matches) }

var matchTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseMatchTime reads an ISO-8601 timestamp. Values without an offset are
// taken as UTC. The second return is false for anything unparsable.
func ParseMatchTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range matchTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
