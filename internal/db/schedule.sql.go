package db

import (
	"context"
)

type ScheduleRow struct {
	MatchID      string
	StageID      int64
	StageName    string
	TeamA        string
	TeamB        string
	MatchTimeIso string
	WinnerTeam   string
	Position     int64
}

const listSchedule = `
SELECT match_id, stage_id, stage_name, team_a, team_b, match_time_iso, winner_team, position
FROM schedule
ORDER BY position
`

func (q *Queries) ListSchedule(ctx context.Context) ([]ScheduleRow, error) {
	rows, err := q.db.QueryContext(ctx, listSchedule)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ScheduleRow
	for rows.Next() {
		var i ScheduleRow
		if err := rows.Scan(
			&i.MatchID,
			&i.StageID,
			&i.StageName,
			&i.TeamA,
			&i.TeamB,
			&i.MatchTimeIso,
			&i.WinnerTeam,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSchedule = `DELETE FROM schedule`

func (q *Queries) DeleteSchedule(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteSchedule)
	return err
}

const insertScheduleRow = `
INSERT INTO schedule (match_id, stage_id, stage_name, team_a, team_b, match_time_iso, winner_team, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertScheduleRow(ctx context.Context, arg ScheduleRow) error {
	_, err := q.db.ExecContext(ctx, insertScheduleRow,
		arg.MatchID,
		arg.StageID,
		arg.StageName,
		arg.TeamA,
		arg.TeamB,
		arg.MatchTimeIso,
		arg.WinnerTeam,
		arg.Position,
	)
	return err
}

const updateWinner = `
UPDATE schedule SET winner_team = ? WHERE match_id = ?
`

type UpdateWinnerParams struct {
	WinnerTeam string
	MatchID    string
}

func (q *Queries) UpdateWinner(ctx context.Context, arg UpdateWinnerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateWinner, arg.WinnerTeam, arg.MatchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
