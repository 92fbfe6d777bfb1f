// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vouchers/cmd/app/commands"
	"github.com/allisson/vouchers/internal/app"
	"github.com/allisson/vouchers/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "vouchers",
		Usage:   "Single-use voucher issuance and redemption service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(
						container.Logger(),
						cfg.DBDriver,
						cfg.DBConnectionString,
					)
				},
			},
			{
				Name:  "issue-voucher",
				Usage: "Issue a new single-use voucher for a recipient",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "recipient",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Recipient identity the voucher is issued to",
					},
					&cli.BoolFlag{
						Name:    "deliver",
						Aliases: []string{"d"},
						Value:   false,
						Usage:   "Email the voucher to the recipient (requires SMTP configuration)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runIssueVoucher(
						ctx,
						cmd.String("recipient"),
						cmd.Bool("deliver"),
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// runIssueVoucher wires the container dependencies for the issue-voucher command.
func runIssueVoucher(ctx context.Context, recipient string, deliver bool, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer commands.CloseContainer(container, logger)

	voucherUseCase, err := container.VoucherUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize voucher use case: %w", err)
	}

	renderer, err := container.Renderer()
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	sender, err := container.Sender()
	if err != nil {
		return fmt.Errorf("failed to initialize sender: %w", err)
	}

	return commands.RunIssueVoucher(
		ctx,
		voucherUseCase,
		renderer,
		sender,
		logger,
		recipient,
		deliver,
		format,
		commands.DefaultIO(),
	)
}
