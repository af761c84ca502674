package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"surfalert-service/internal/models"
	"surfalert-service/internal/services"
)

func newProcessCmd() *cobra.Command {
	var spot string
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run a single alert processing cycle and exit",
		Long:  "Run a single alert processing cycle and exit. Intended for cron, e.g. \"0 */3 * * *\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if spot != "" {
				if _, ok := a.catalog.Get(spot); !ok {
					return fmt.Errorf("%w: unknown spot %q", models.ErrValidation, spot)
				}
			}

			summary, err := a.service.RunCycle(ctx, services.NewTask(models.ReasonManual, spot))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&spot, "spot", "", "only evaluate preferences for this spot slug")
	return cmd
}
