package survivorv1

import "time"

type Stage struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Match struct {
	ID        string `json:"id"`
	StageID   int    `json:"stage_id"`
	StageName string `json:"stage_name"`
	TeamA     string `json:"team_a"`
	TeamB     string `json:"team_b"`
	// unset when match_time_iso could not be parsed
	StartTime    time.Time `json:"start_time,omitzero"`
	StartTimeRaw string    `json:"match_time_iso"`
	Winner       string    `json:"winner,omitempty"`
}

type AssignedMatch struct {
	User              string    `json:"user"`
	StageID           int       `json:"stage_id"`
	AssignedAt        time.Time `json:"assigned_at"`
	Match             Match     `json:"match"`
	LockDeadline      time.Time `json:"lock_deadline,omitzero"`
	LockDeadlineLocal string    `json:"lock_deadline_local,omitempty"`
	CanPick           bool      `json:"can_pick"`
	Unscheduled       bool      `json:"unscheduled,omitempty"`
}

type Pick struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	StageID  int       `json:"stage_id"`
	MatchID  string    `json:"match_id"`
	Team     string    `json:"pick_team"`
	PickedAt time.Time `json:"pick_time"`
}

type Result struct {
	User     string `json:"user"`
	StageID  int    `json:"stage_id"`
	MatchID  string `json:"match_id"`
	PickTeam string `json:"pick_team"`
	Outcome  string `json:"outcome"`
}

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	User           string `json:"user"`
	Alive          bool   `json:"alive"`
	Wins           int    `json:"wins"`
	FirstLossStage *int   `json:"first_loss_stage,omitempty"`
}

type UserStats struct {
	User    string `json:"user"`
	Alive   bool   `json:"alive"`
	Picks   int    `json:"picks"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Pending int    `json:"pending"`
}

type GetActiveStageRequest struct{}

type GetActiveStageResponse struct {
	Stage *Stage `json:"stage,omitempty"`
}

type GetAssignmentRequest struct {
	User    string `json:"user"`
	StageID int    `json:"stage_id"`
}

type GetAssignmentResponse struct {
	Assignment AssignedMatch `json:"assignment"`
}

type RecordPickRequest struct {
	User    string `json:"user"`
	StageID int    `json:"stage_id"`
	MatchID string `json:"match_id"`
	Team    string `json:"pick_team"`
}

type RecordPickResponse struct {
	Pick Pick `json:"pick"`
}

// ListResultsRequest with an empty User lists every result.
type ListResultsRequest struct {
	User string `json:"user,omitempty"`
}

type ListResultsResponse struct {
	Results []Result `json:"results"`
}

type GetLeaderboardRequest struct{}

type GetLeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

type GetDashboardRequest struct {
	User string `json:"user"`
}

type GetDashboardResponse struct {
	User              string             `json:"user"`
	Alive             bool               `json:"alive"`
	ActiveStage       *Stage             `json:"active_stage,omitempty"`
	Assignment        *AssignedMatch     `json:"assignment,omitempty"`
	Pick              *Pick              `json:"pick,omitempty"`
	AssignmentSkipped bool               `json:"assignment_skipped,omitempty"`
	Results           []Result           `json:"results"`
	Leaderboard       []LeaderboardEntry `json:"leaderboard"`
	Timezone          string             `json:"timezone"`
}

type GetUserStatsRequest struct {
	User string `json:"user"`
}

type GetUserStatsResponse struct {
	Stats UserStats `json:"stats"`
}

type ReplaceScheduleRequest struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type ReplaceScheduleResponse struct {
	Stages     int      `json:"stages"`
	Matches    int      `json:"matches"`
	Unparsable []string `json:"unparsable,omitempty"`
}

type ExportScheduleRequest struct{}

type ExportScheduleResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type SetWinnerRequest struct {
	MatchID string `json:"match_id"`
	// empty clears the winner
	Winner string `json:"winner"`
}

type SetWinnerResponse struct{}
