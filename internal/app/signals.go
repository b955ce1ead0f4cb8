package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// handleSignals reloads the config on SIGHUP until ctx is done.
func (a *App) handleSignals(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			a.logger.Info("received SIGHUP, reloading config")
			if err := a.Reload(); err != nil {
				a.logger.Warn("config reload failed", "error", err)
			}
		}
	}
}
