package db

import (
	"context"
)

type Assignment struct {
	User            string
	StageID         int64
	MatchID         string
	AssignedTimeIso string
}

const getAssignment = `
SELECT user, stage_id, match_id, assigned_time_iso
FROM assignments
WHERE user = ? AND stage_id = ?
`

type GetAssignmentParams struct {
	User    string
	StageID int64
}

func (q *Queries) GetAssignment(ctx context.Context, arg GetAssignmentParams) (Assignment, error) {
	row := q.db.QueryRowContext(ctx, getAssignment, arg.User, arg.StageID)
	var i Assignment
	err := row.Scan(
		&i.User,
		&i.StageID,
		&i.MatchID,
		&i.AssignedTimeIso,
	)
	return i, err
}

const upsertAssignment = `
INSERT INTO assignments (user, stage_id, match_id, assigned_time_iso)
VALUES (?, ?, ?, ?)
ON CONFLICT (user, stage_id) DO UPDATE SET
    match_id = excluded.match_id,
    assigned_time_iso = excluded.assigned_time_iso
`

func (q *Queries) UpsertAssignment(ctx context.Context, arg Assignment) error {
	_, err := q.db.ExecContext(ctx, upsertAssignment,
		arg.User,
		arg.StageID,
		arg.MatchID,
		arg.AssignedTimeIso,
	)
	return err
}

type Pick struct {
	ID          string
	User        string
	StageID     int64
	MatchID     string
	PickTeam    string
	PickTimeIso string
}

const getPick = `
SELECT id, user, stage_id, match_id, pick_team, pick_time_iso
FROM picks
WHERE user = ? AND stage_id = ?
`

type GetPickParams struct {
	User    string
	StageID int64
}

func (q *Queries) GetPick(ctx context.Context, arg GetPickParams) (Pick, error) {
	row := q.db.QueryRowContext(ctx, getPick, arg.User, arg.StageID)
	var i Pick
	err := row.Scan(
		&i.ID,
		&i.User,
		&i.StageID,
		&i.MatchID,
		&i.PickTeam,
		&i.PickTimeIso,
	)
	return i, err
}

const insertPick = `
INSERT INTO picks (id, user, stage_id, match_id, pick_team, pick_time_iso)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertPick(ctx context.Context, arg Pick) error {
	_, err := q.db.ExecContext(ctx, insertPick,
		arg.ID,
		arg.User,
		arg.StageID,
		arg.MatchID,
		arg.PickTeam,
		arg.PickTimeIso,
	)
	return err
}

const listPicks = `
SELECT id, user, stage_id, match_id, pick_team, pick_time_iso
FROM picks
ORDER BY stage_id, user
`

func (q *Queries) ListPicks(ctx context.Context) ([]Pick, error) {
	rows, err := q.db.QueryContext(ctx, listPicks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPicks(rows)
}

const listPicksByUser = `
SELECT id, user, stage_id, match_id, pick_team, pick_time_iso
FROM picks
WHERE user = ?
ORDER BY stage_id
`

func (q *Queries) ListPicksByUser(ctx context.Context, user string) ([]Pick, error) {
	rows, err := q.db.QueryContext(ctx, listPicksByUser, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPicks(rows)
}

type scanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

func scanPicks(rows scanner) ([]Pick, error) {
	var items []Pick
	for rows.Next() {
		var i Pick
		if err := rows.Scan(
			&i.ID,
			&i.User,
			&i.StageID,
			&i.MatchID,
			&i.PickTeam,
			&i.PickTimeIso,
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
