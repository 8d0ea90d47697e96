package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v3"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/analyzer"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/cmd"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/config"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/generator"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/log"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/pipeline"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/reconcile"
)

const defaultPort = 9080

func main() {
	command := &cli.Command{
		Name:                  "streamsuite-api",
		Usage:                 "Generate and validate workflow artifacts",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "ledger-url",
				Usage:   "Credit ledger store URL (redis://, postgres://, sqlite:// or empty for in-memory)",
				Sources: cli.EnvVars("LEDGER_URL"),
			},
			&cli.StringFlag{
				Name:    "account",
				Usage:   "Ledger account identifier",
				Value:   "default",
				Sources: cli.EnvVars("LEDGER_ACCOUNT"),
			},
			&cli.StringFlag{
				Name:     "generator-url",
				Usage:    "Base URL of the generation service",
				Required: true,
				Sources:  cli.EnvVars("GENERATOR_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the streamsuite.yaml configuration file",
				Value:   "streamsuite.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing StreamSuite API")

			cfg := config.LoadOrDefault(command.String("config"))
			if err := config.Validate(cfg); err != nil {
				return err
			}

			store, err := cmd.NewLedgerStore(command.String("ledger-url"), command.String("account"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close ledger store", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			policy := ledger.NewPolicy(store, &cfg.Pricing, nil, logger)

			sweeper, err := reconcile.NewSweeper(policy.Journal(), "", logger)
			if err != nil {
				return err
			}

			if err := sweeper.Start(ctx); err != nil {
				return err
			}

			defer func() {
				if err := sweeper.Stop(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to stop reconcile sweeper", "error", err)
				}
			}()

			gen := generator.NewHTTPGenerator(command.String("generator-url"), logger)
			anlz := analyzer.New(&cfg.Triggers)
			service := pipeline.NewService(gen, policy, anlz, eventBus, cfg.Limits, logger)

			api := NewAPI(logger, service, store)

			return api.Start(int(command.Int("port")))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
