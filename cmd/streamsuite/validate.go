// Package main provides the StreamSuite command line tooling.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/analyzer"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/config"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/export"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/log"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/sanitizer"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Sanitize and analyze a workflow document file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the streamsuite.yaml configuration file",
				Value:   "streamsuite.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:  "user-error",
				Usage: "Error text reported by the user, included in the analysis",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			file := command.Args().First()
			if file == "" {
				return fmt.Errorf("usage: streamsuite validate <file>")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			doc, err := sanitizer.SanitizeJSON(string(data))
			if err != nil {
				_, _ = fmt.Fprintf(os.Stdout, "❌ INVALID: %v\n", err)

				return err
			}

			cfg := config.LoadOrDefault(command.String("config"))
			issues := analyzer.New(&cfg.Triggers).Analyze(doc, command.String("user-error"))

			_, _ = fmt.Fprintf(os.Stdout, "Document: %s (%d nodes)\n", doc.Name, len(doc.Nodes))

			rendered, err := export.Marshal(doc)
			if err != nil {
				return err
			}

			if err := export.ValidateExport(rendered); err != nil {
				_, _ = fmt.Fprintf(os.Stdout, "❌ SCHEMA: %v\n", err)

				return err
			}

			if len(issues) == 0 {
				_, _ = fmt.Fprintln(os.Stdout, "✅ VALID: no structural issues found")

				return nil
			}

			_, _ = fmt.Fprintf(os.Stdout, "Found %d issue(s):\n", len(issues))

			for _, issue := range issues {
				_, _ = fmt.Fprintf(os.Stdout, "  ⚠ %s\n", issue)
			}

			return nil
		},
	}
}
