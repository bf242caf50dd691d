package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Wanderfund/internal/domain/recurring"
	appfx "Wanderfund/internal/fx"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func schedulerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Recurring auto-debit commands",
	}
	cmd.AddCommand(schedulerRunCmd())
	return cmd
}

func schedulerRunCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one recurring pass and print the report",
		Long: `Run one recurring pass over every open daily, weekly and monthly goal.

A goal already debited in the current period is skipped, so running this
more than once per period is safe.

Examples:
  wanderfund-cli scheduler run
  wanderfund-cli scheduler run --at 2026-03-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
				now = parsed
			}
			return runScheduler(cmd.Context(), now)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate due goals against (RFC3339)")
	return cmd
}

func runScheduler(ctx context.Context, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var svc *recurring.Service
	app := fx.New(
		appfx.CoreModule,
		fx.Populate(&svc),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	report, err := svc.RunDuePeriod(ctx, now)
	if report != nil {
		out, jsonErr := json.MarshalIndent(report, "", "  ")
		if jsonErr != nil {
			return jsonErr
		}
		fmt.Println(string(out))
	}
	if err != nil {
		return fmt.Errorf("recurring pass aborted: %w", err)
	}

	fmt.Printf("applied=%d skipped=%d failed=%d\n", len(report.Applied), len(report.Skipped), len(report.Failures))
	return nil
}
