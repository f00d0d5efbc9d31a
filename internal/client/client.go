// Package client is a typed connect client for the survivor RPC API.
package client

import (
	"context"
	"net/http"
	"strings"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/survivorv1"

	"connectrpc.com/connect"
)

type Client struct {
	adminKey string

	getActiveStage  *connect.Client[survivorv1.GetActiveStageRequest, survivorv1.GetActiveStageResponse]
	getAssignment   *connect.Client[survivorv1.GetAssignmentRequest, survivorv1.GetAssignmentResponse]
	recordPick      *connect.Client[survivorv1.RecordPickRequest, survivorv1.RecordPickResponse]
	listResults     *connect.Client[survivorv1.ListResultsRequest, survivorv1.ListResultsResponse]
	getLeaderboard  *connect.Client[survivorv1.GetLeaderboardRequest, survivorv1.GetLeaderboardResponse]
	getDashboard    *connect.Client[survivorv1.GetDashboardRequest, survivorv1.GetDashboardResponse]
	getUserStats    *connect.Client[survivorv1.GetUserStatsRequest, survivorv1.GetUserStatsResponse]
	replaceSchedule *connect.Client[survivorv1.ReplaceScheduleRequest, survivorv1.ReplaceScheduleResponse]
	exportSchedule  *connect.Client[survivorv1.ExportScheduleRequest, survivorv1.ExportScheduleResponse]
	setWinner       *connect.Client[survivorv1.SetWinnerRequest, survivorv1.SetWinnerResponse]
}

// New builds a client for the server at baseURL. adminKey is sent only on
// admin procedures.
func New(httpClient connect.HTTPClient, baseURL, adminKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	opt := connect.WithCodec(survivorv1.Codec{})

	return &Client{
		adminKey:        adminKey,
		getActiveStage:  connect.NewClient[survivorv1.GetActiveStageRequest, survivorv1.GetActiveStageResponse](httpClient, baseURL+survivorv1.GetActiveStageProcedure, opt),
		getAssignment:   connect.NewClient[survivorv1.GetAssignmentRequest, survivorv1.GetAssignmentResponse](httpClient, baseURL+survivorv1.GetAssignmentProcedure, opt),
		recordPick:      connect.NewClient[survivorv1.RecordPickRequest, survivorv1.RecordPickResponse](httpClient, baseURL+survivorv1.RecordPickProcedure, opt),
		listResults:     connect.NewClient[survivorv1.ListResultsRequest, survivorv1.ListResultsResponse](httpClient, baseURL+survivorv1.ListResultsProcedure, opt),
		getLeaderboard:  connect.NewClient[survivorv1.GetLeaderboardRequest, survivorv1.GetLeaderboardResponse](httpClient, baseURL+survivorv1.GetLeaderboardProcedure, opt),
		getDashboard:    connect.NewClient[survivorv1.GetDashboardRequest, survivorv1.GetDashboardResponse](httpClient, baseURL+survivorv1.GetDashboardProcedure, opt),
		getUserStats:    connect.NewClient[survivorv1.GetUserStatsRequest, survivorv1.GetUserStatsResponse](httpClient, baseURL+survivorv1.GetUserStatsProcedure, opt),
		replaceSchedule: connect.NewClient[survivorv1.ReplaceScheduleRequest, survivorv1.ReplaceScheduleResponse](httpClient, baseURL+survivorv1.ReplaceScheduleProcedure, opt),
		exportSchedule:  connect.NewClient[survivorv1.ExportScheduleRequest, survivorv1.ExportScheduleResponse](httpClient, baseURL+survivorv1.ExportScheduleProcedure, opt),
		setWinner:       connect.NewClient[survivorv1.SetWinnerRequest, survivorv1.SetWinnerResponse](httpClient, baseURL+survivorv1.SetWinnerProcedure, opt),
	}
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], msg *Req, header map[string]string) (*Res, error) {
	req := connect.NewRequest(msg)
	for k, v := range header {
		req.Header().Set(k, v)
	}
	resp, err := c.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) admin() map[string]string {
	return map[string]string{constants.AdminKeyHeader: c.adminKey}
}

func (c *Client) GetActiveStage(ctx context.Context) (*survivorv1.GetActiveStageResponse, error) {
	return call(ctx, c.getActiveStage, &survivorv1.GetActiveStageRequest{}, nil)
}

func (c *Client) GetAssignment(ctx context.Context, user string, stageID int) (*survivorv1.GetAssignmentResponse, error) {
	return call(ctx, c.getAssignment, &survivorv1.GetAssignmentRequest{User: user, StageID: stageID}, nil)
}

func (c *Client) RecordPick(ctx context.Context, user string, stageID int, matchID, team string) (*survivorv1.RecordPickResponse, error) {
	return call(ctx, c.recordPick, &survivorv1.RecordPickRequest{User: user, StageID: stageID, MatchID: matchID, Team: team}, nil)
}

func (c *Client) ListResults(ctx context.Context, user string) (*survivorv1.ListResultsResponse, error) {
	return call(ctx, c.listResults, &survivorv1.ListResultsRequest{User: user}, nil)
}

func (c *Client) GetLeaderboard(ctx context.Context) (*survivorv1.GetLeaderboardResponse, error) {
	return call(ctx, c.getLeaderboard, &survivorv1.GetLeaderboardRequest{}, nil)
}

func (c *Client) GetDashboard(ctx context.Context, user string) (*survivorv1.GetDashboardResponse, error) {
	return call(ctx, c.getDashboard, &survivorv1.GetDashboardRequest{User: user}, nil)
}

func (c *Client) GetUserStats(ctx context.Context, user string) (*survivorv1.GetUserStatsResponse, error) {
	return call(ctx, c.getUserStats, &survivorv1.GetUserStatsRequest{User: user}, nil)
}

func (c *Client) ReplaceSchedule(ctx context.Context, filename string, content []byte) (*survivorv1.ReplaceScheduleResponse, error) {
	return call(ctx, c.replaceSchedule, &survivorv1.ReplaceScheduleRequest{Filename: filename, Content: content}, c.admin())
}

func (c *Client) ExportSchedule(ctx context.Context) (*survivorv1.ExportScheduleResponse, error) {
	return call(ctx, c.exportSchedule, &survivorv1.ExportScheduleRequest{}, c.admin())
}

func (c *Client) SetWinner(ctx context.Context, matchID, winner string) error {
	_, err := call(ctx, c.setWinner, &survivorv1.SetWinnerRequest{MatchID: matchID, Winner: winner}, c.admin())
	return err
}
