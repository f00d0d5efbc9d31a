package survivorv1

const ServiceName = "vctsurvivor.v1.SurvivorService"

// ServicePath is the mount point of every procedure below.
const ServicePath = "/" + ServiceName + "/"

const (
	GetActiveStageProcedure  = ServicePath + "GetActiveStage"
	GetAssignmentProcedure   = ServicePath + "GetAssignment"
	RecordPickProcedure      = ServicePath + "RecordPick"
	ListResultsProcedure     = ServicePath + "ListResults"
	GetLeaderboardProcedure  = ServicePath + "GetLeaderboard"
	GetDashboardProcedure    = ServicePath + "GetDashboard"
	GetUserStatsProcedure    = ServicePath + "GetUserStats"
	ReplaceScheduleProcedure = ServicePath + "ReplaceSchedule"
	ExportScheduleProcedure  = ServicePath + "ExportSchedule"
	SetWinnerProcedure       = ServicePath + "SetWinner"
)

// AdminProcedures require the admin key header.
var AdminProcedures = map[string]bool{
	ReplaceScheduleProcedure: true,
	ExportScheduleProcedure:  true,
	SetWinnerProcedure:       true,
}
