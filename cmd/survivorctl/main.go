package main

import (
	"fmt"
	"io"
	"os"
	"vct-survivor/internal/client"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "survivorctl",
		Usage:  "administer and query a VCT survivor pool server",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "base URL of the survivor server",
				Value:   "http://localhost:8080",
				EnvVars: []string{"SURVIVOR_SERVER"},
			},
			&cli.StringFlag{
				Name:    "admin-key",
				Usage:   "admin key for schedule and winner changes",
				EnvVars: []string{"ADMIN_KEY"},
			},
		},
		Commands: []*cli.Command{
			newScheduleCommand(),
			newResolveCommand(),
			newLeaderboardCommand(),
			newDashboardCommand(),
			newPickCommand(),
		},
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(nil, c.String("server"), c.String("admin-key"))
}
