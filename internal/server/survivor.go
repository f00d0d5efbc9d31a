package server

import (
	"context"
	"errors"
	"vct-survivor/internal/domain"
	"vct-survivor/internal/middleware"
	"vct-survivor/internal/service"
	"vct-survivor/internal/survivorv1"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type SurvivorServer struct {
	scheduleSvc *service.ScheduleService
	pickSvc     *service.PickService
	survivorSvc *service.SurvivorService
	logger      zerolog.Logger
}

func NewSurvivorServer(scheduleSvc *service.ScheduleService, pickSvc *service.PickService, survivorSvc *service.SurvivorService, logger zerolog.Logger) *SurvivorServer {
	return &SurvivorServer{scheduleSvc: scheduleSvc, pickSvc: pickSvc, survivorSvc: survivorSvc, logger: logger}
}

func (s *SurvivorServer) GetActiveStage(ctx context.Context, req *connect.Request[survivorv1.GetActiveStageRequest]) (*connect.Response[survivorv1.GetActiveStageResponse], error) {
	stage, err := s.scheduleSvc.ActiveStage(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.GetActiveStageResponse{Stage: toWireStage(stage)}), nil
}

func (s *SurvivorServer) GetAssignment(ctx context.Context, req *connect.Request[survivorv1.GetAssignmentRequest]) (*connect.Response[survivorv1.GetAssignmentResponse], error) {
	assigned, err := s.survivorSvc.Assign(ctx, req.Msg.User, req.Msg.StageID)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.GetAssignmentResponse{Assignment: *toWireAssigned(assigned)}), nil
}

func (s *SurvivorServer) RecordPick(ctx context.Context, req *connect.Request[survivorv1.RecordPickRequest]) (*connect.Response[survivorv1.RecordPickResponse], error) {
	pick, err := s.pickSvc.RecordPick(ctx, req.Msg.User, req.Msg.StageID, req.Msg.MatchID, req.Msg.Team)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.RecordPickResponse{Pick: *toWirePick(pick)}), nil
}

func (s *SurvivorServer) ListResults(ctx context.Context, req *connect.Request[survivorv1.ListResultsRequest]) (*connect.Response[survivorv1.ListResultsResponse], error) {
	results, err := s.survivorSvc.Results(ctx, req.Msg.User)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.ListResultsResponse{Results: toWireResults(results)}), nil
}

func (s *SurvivorServer) GetLeaderboard(ctx context.Context, req *connect.Request[survivorv1.GetLeaderboardRequest]) (*connect.Response[survivorv1.GetLeaderboardResponse], error) {
	entries, err := s.survivorSvc.Leaderboard(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.GetLeaderboardResponse{Entries: toWireLeaderboard(entries)}), nil
}

func (s *SurvivorServer) GetDashboard(ctx context.Context, req *connect.Request[survivorv1.GetDashboardRequest]) (*connect.Response[survivorv1.GetDashboardResponse], error) {
	d, err := s.survivorSvc.Dashboard(ctx, req.Msg.User)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := &survivorv1.GetDashboardResponse{
		User:              d.User,
		Alive:             d.Alive,
		ActiveStage:       toWireStage(d.ActiveStage),
		Assignment:        toWireAssigned(d.Assigned),
		Pick:              toWirePick(d.Pick),
		AssignmentSkipped: d.AssignmentSkipped,
		Results:           toWireResults(d.Results),
		Leaderboard:       toWireLeaderboard(d.Leaderboard),
		Timezone:          d.Timezone,
	}
	return connect.NewResponse(resp), nil
}

func (s *SurvivorServer) GetUserStats(ctx context.Context, req *connect.Request[survivorv1.GetUserStatsRequest]) (*connect.Response[survivorv1.GetUserStatsResponse], error) {
	stats, err := s.survivorSvc.UserStats(ctx, req.Msg.User)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.GetUserStatsResponse{Stats: survivorv1.UserStats{
		User:    stats.User,
		Alive:   stats.Alive,
		Picks:   stats.Picks,
		Wins:    stats.Wins,
		Losses:  stats.Losses,
		Pending: stats.Pending,
	}}), nil
}

func (s *SurvivorServer) ReplaceSchedule(ctx context.Context, req *connect.Request[survivorv1.ReplaceScheduleRequest]) (*connect.Response[survivorv1.ReplaceScheduleResponse], error) {
	summary, err := s.scheduleSvc.ImportFile(ctx, req.Msg.Filename, req.Msg.Content)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.ReplaceScheduleResponse{
		Stages:     summary.Stages,
		Matches:    summary.Matches,
		Unparsable: summary.Unparsable,
	}), nil
}

func (s *SurvivorServer) ExportSchedule(ctx context.Context, req *connect.Request[survivorv1.ExportScheduleRequest]) (*connect.Response[survivorv1.ExportScheduleResponse], error) {
	content, err := s.scheduleSvc.ExportCSV(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.ExportScheduleResponse{Filename: "schedule.csv", Content: content}), nil
}

func (s *SurvivorServer) SetWinner(ctx context.Context, req *connect.Request[survivorv1.SetWinnerRequest]) (*connect.Response[survivorv1.SetWinnerResponse], error) {
	if err := s.scheduleSvc.SetWinner(ctx, req.Msg.MatchID, req.Msg.Winner); err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&survivorv1.SetWinnerResponse{}), nil
}

// toConnectError maps domain failures to connect codes. Anything unmapped is
// logged and surfaces as Internal.
func (s *SurvivorServer) toConnectError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicatePick):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, domain.ErrUnknownMatch):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, domain.ErrInvalidTeam),
		errors.Is(err, domain.ErrMalformedSchedule),
		errors.Is(err, domain.ErrInvalidUser):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, domain.ErrLocked),
		errors.Is(err, domain.ErrNotAssigned),
		errors.Is(err, domain.ErrNoEligibleMatch):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	s.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(ctx)).Msg("internal error")
	return connect.NewError(connect.CodeInternal, err)
}
