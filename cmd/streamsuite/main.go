package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "streamsuite",
		Usage:                 "Workflow artifact tooling",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
