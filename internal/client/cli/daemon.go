package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/offsync/internal/client/replication"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewDaemonCommand creates "daemon": the reachability watcher and the sync
// scheduler run until SIGINT or SIGTERM. Coming back online triggers a pass
// right away instead of waiting for the next tick.
func NewDaemonCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sync in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			if a.identity.Owner == "" {
				return common.ErrUnauthenticated
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx, a)
		},
	}
}

func runDaemon(ctx context.Context, a *App) error {
	sched := replication.NewScheduler(a.engine, a.identity.Owner, a.config.SyncInterval, a.logger)
	a.watcher.OnChange(func(online bool) {
		if online {
			sched.Trigger()
		}
	})

	a.logger.Info(ctx, "daemon started",
		"server", a.config.ServerEndpointAddr,
		"device_id", a.identity.DeviceID,
		"sync_interval", a.config.SyncInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.watcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	err := g.Wait()

	a.logger.Info(context.Background(), "daemon stopped")
	return err
}
