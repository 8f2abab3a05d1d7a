package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "guildsync"
	s.app.Usage = "Keep OAuth2 credentials of verified members fresh and pull them into guilds"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.toml",
			Usage:   "Path to the toml config file",
			EnvVars: []string{"GUILDSYNC_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Server",
			Description: `Serves the verification pages and the operator API, and pings itself to stay alive.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Server",
			Description: `Runs the versioned migrations on mysql, or auto migrates any other driver.`,
		},
		{
			Action:   s.startRefresh,
			Name:     "refresh",
			Usage:    "Refresh the credential of a member",
			Category: "Operator",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "user", Usage: "User id", Required: true},
				&cli.BoolFlag{Name: "force", Usage: "Refresh even if the access token is still valid"},
			},
		},
		{
			Action:   s.startPull,
			Name:     "pull",
			Usage:    "Add a verified member to a guild",
			Category: "Operator",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "guild", Usage: "Guild id", Required: true},
				&cli.StringFlag{Name: "user", Usage: "User id", Required: true},
			},
		},
		{
			Action:   s.startList,
			Name:     "list",
			Usage:    "List verified members",
			Category: "Operator",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "tokens", Usage: "Show tokens instead of their fingerprints"},
			},
		},
		{
			Action:   s.startStats,
			Name:     "stats",
			Usage:    "Count verified members of a guild",
			Category: "Operator",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "guild", Usage: "Guild id", Required: true},
			},
		},
	}
}
