package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/survivorv1"

	"connectrpc.com/connect"
)

// NewSurvivorHandler mounts every procedure of the survivor service and
// returns the path prefix to route to it.
func NewSurvivorHandler(s *SurvivorServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(survivorv1.Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(survivorv1.GetActiveStageProcedure, connect.NewUnaryHandler(survivorv1.GetActiveStageProcedure, s.GetActiveStage, opts...))
	mux.Handle(survivorv1.GetAssignmentProcedure, connect.NewUnaryHandler(survivorv1.GetAssignmentProcedure, s.GetAssignment, opts...))
	mux.Handle(survivorv1.RecordPickProcedure, connect.NewUnaryHandler(survivorv1.RecordPickProcedure, s.RecordPick, opts...))
	mux.Handle(survivorv1.ListResultsProcedure, connect.NewUnaryHandler(survivorv1.ListResultsProcedure, s.ListResults, opts...))
	mux.Handle(survivorv1.GetLeaderboardProcedure, connect.NewUnaryHandler(survivorv1.GetLeaderboardProcedure, s.GetLeaderboard, opts...))
	mux.Handle(survivorv1.GetDashboardProcedure, connect.NewUnaryHandler(survivorv1.GetDashboardProcedure, s.GetDashboard, opts...))
	mux.Handle(survivorv1.GetUserStatsProcedure, connect.NewUnaryHandler(survivorv1.GetUserStatsProcedure, s.GetUserStats, opts...))
	mux.Handle(survivorv1.ReplaceScheduleProcedure, connect.NewUnaryHandler(survivorv1.ReplaceScheduleProcedure, s.ReplaceSchedule, opts...))
	mux.Handle(survivorv1.ExportScheduleProcedure, connect.NewUnaryHandler(survivorv1.ExportScheduleProcedure, s.ExportSchedule, opts...))
	mux.Handle(survivorv1.SetWinnerProcedure, connect.NewUnaryHandler(survivorv1.SetWinnerProcedure, s.SetWinner, opts...))
	return survivorv1.ServicePath, mux
}

var errAdminDisabled = errors.New("admin procedures are disabled")

// AdminKeyInterceptor guards the admin procedures with a shared key sent in
// the X-Admin-Key header. An empty key disables them.
func AdminKeyInterceptor(key string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !survivorv1.AdminProcedures[req.Spec().Procedure] {
				return next(ctx, req)
			}
			if key == "" {
				return nil, connect.NewError(connect.CodePermissionDenied, errAdminDisabled)
			}
			got := req.Header().Get(constants.AdminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid admin key"))
			}
			return next(ctx, req)
		}
	}
}
