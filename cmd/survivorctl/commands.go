package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"vct-survivor/internal/parser"
	"vct-survivor/internal/sheets"
	"vct-survivor/internal/survivorv1"

	"github.com/urfave/cli/v2"
)

func newScheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "replace or export the match schedule",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "replace the schedule with a CSV or XLSX file",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("schedule import needs a FILE", 2)
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					resp, err := newClient(c).ReplaceSchedule(c.Context, filepath.Base(path), data)
					if err != nil {
						return err
					}
					printImport(c, resp)
					return nil
				},
			},
			{
				Name:  "import-sheet",
				Usage: "replace the schedule with a Google Sheets range",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "credentials", Usage: "service account JSON file", Required: true, EnvVars: []string{"GOOGLE_APPLICATION_CREDENTIALS"}},
					&cli.StringFlag{Name: "spreadsheet", Usage: "spreadsheet id", Required: true},
					&cli.StringFlag{Name: "range", Usage: "A1 range holding the schedule", Value: sheets.DefaultRange},
				},
				Action: func(c *cli.Context) error {
					sc, err := sheets.New(c.Context, c.String("credentials"), c.String("spreadsheet"))
					if err != nil {
						return err
					}
					table, err := sc.ReadSchedule(c.Context, c.String("range"))
					if err != nil {
						return err
					}
					data, err := tableCSV(table)
					if err != nil {
						return err
					}
					resp, err := newClient(c).ReplaceSchedule(c.Context, "sheet.csv", data)
					if err != nil {
						return err
					}
					printImport(c, resp)
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "download the schedule as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to this file instead of stdout"},
				},
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).ExportSchedule(c.Context)
					if err != nil {
						return err
					}
					if out := c.String("out"); out != "" {
						if err := os.WriteFile(out, resp.Content, 0o644); err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
						return nil
					}
					_, err = c.App.Writer.Write(resp.Content)
					return err
				},
			},
		},
	}
}

func newResolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "record the winner of a match (empty WINNER clears it)",
		ArgsUsage: "MATCH WINNER",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("resolve needs MATCH [WINNER]", 2)
			}
			matchID, winner := c.Args().Get(0), c.Args().Get(1)
			if err := newClient(c).SetWinner(c.Context, matchID, winner); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s winner: %q\n", matchID, winner)
			return nil
		},
	}
}

func newLeaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print the leaderboard",
		Action: func(c *cli.Context) error {
			resp, err := newClient(c).GetLeaderboard(c.Context)
			if err != nil {
				return err
			}
			printLeaderboard(c, resp.Entries)
			return nil
		},
	}
}

func newDashboardCommand() *cli.Command {
	return &cli.Command{
		Name:      "dashboard",
		Usage:     "show a participant's standing, assignment and results",
		ArgsUsage: "USER",
		Action: func(c *cli.Context) error {
			user := c.Args().First()
			if user == "" {
				return cli.Exit("dashboard needs a USER", 2)
			}
			d, err := newClient(c).GetDashboard(c.Context, user)
			if err != nil {
				return err
			}
			printDashboard(c, d)
			return nil
		},
	}
}

func newPickCommand() *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "submit a participant's pick",
		ArgsUsage: "USER STAGE MATCH TEAM",
		Action: func(c *cli.Context) error {
			if c.NArg() != 4 {
				return cli.Exit("pick needs USER STAGE MATCH TEAM", 2)
			}
			stageID, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid STAGE %q", c.Args().Get(1)), 2)
			}
			resp, err := newClient(c).RecordPick(c.Context, c.Args().Get(0), stageID, c.Args().Get(2), c.Args().Get(3))
			if err != nil {
				return err
			}
			p := resp.Pick
			fmt.Fprintf(c.App.Writer, "%s picked %s in %s (stage %d) at %s\n", p.User, p.Team, p.MatchID, p.StageID, p.PickedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func tableCSV(t *parser.Table) ([]byte, error) {
	if missing := t.Missing(parser.ScheduleColumns); len(missing) > 0 {
		return nil, fmt.Errorf("sheet is missing columns: %s", strings.Join(missing, ", "))
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values := make([]string, len(parser.ScheduleColumns))
		for i, col := range parser.ScheduleColumns {
			values[i] = t.Get(row, col)
		}
		rows = append(rows, values)
	}
	return parser.WriteCSV(parser.ScheduleColumns, rows)
}

func printImport(c *cli.Context, resp *survivorv1.ReplaceScheduleResponse) {
	fmt.Fprintf(c.App.Writer, "schedule replaced: %d stages, %d matches\n", resp.Stages, resp.Matches)
	if len(resp.Unparsable) > 0 {
		fmt.Fprintf(c.App.Writer, "warning: unparsable match_time_iso for %s (never pickable)\n", strings.Join(resp.Unparsable, ", "))
	}
}

func printLeaderboard(c *cli.Context, entries []survivorv1.LeaderboardEntry) {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER\tSTATUS\tWINS\tOUT IN STAGE")
	for _, e := range entries {
		status, out := "alive", "-"
		if !e.Alive {
			status = "eliminated"
		}
		if e.FirstLossStage != nil {
			out = strconv.Itoa(*e.FirstLossStage)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", e.Rank, e.User, status, e.Wins, out)
	}
	w.Flush()
}

func printDashboard(c *cli.Context, d *survivorv1.GetDashboardResponse) {
	out := c.App.Writer
	status := "alive"
	if !d.Alive {
		status = "eliminated"
	}
	fmt.Fprintf(out, "%s: %s\n", d.User, status)

	switch {
	case d.ActiveStage == nil:
		fmt.Fprintln(out, "no active stage")
	case d.AssignmentSkipped:
		fmt.Fprintf(out, "stage %d (%s): eliminated players are not assigned\n", d.ActiveStage.ID, d.ActiveStage.Name)
	case d.Assignment != nil && d.Assignment.Unscheduled:
		fmt.Fprintf(out, "stage %d (%s): match %s was removed from the schedule\n", d.ActiveStage.ID, d.ActiveStage.Name, d.Assignment.Match.ID)
	case d.Assignment != nil:
		m := d.Assignment.Match
		fmt.Fprintf(out, "stage %d (%s): %s vs %s [%s]\n", d.ActiveStage.ID, d.ActiveStage.Name, m.TeamA, m.TeamB, m.ID)
		if d.Assignment.LockDeadlineLocal != "" {
			fmt.Fprintf(out, "picks lock at %s (%s)\n", d.Assignment.LockDeadlineLocal, d.Timezone)
		}
		switch {
		case d.Pick != nil:
			fmt.Fprintf(out, "your pick: %s\n", d.Pick.Team)
		case d.Assignment.CanPick:
			fmt.Fprintln(out, "no pick yet")
		default:
			fmt.Fprintln(out, "picks are locked")
		}
	}

	if len(d.Results) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tMATCH\tPICK\tRESULT")
		for _, r := range d.Results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.StageID, r.MatchID, r.PickTeam, r.Outcome)
		}
		w.Flush()
	}
}
