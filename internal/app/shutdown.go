package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application. The scanner finishes its
// in-flight cycle; the HTTP server drains with a timeout.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.probe.SetReady(false)

	// Signal the scanner to stop
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	a.wg.Wait()

	a.cache.Close()

	a.logger.Info("application-shutdown-complete",
		zap.Int64("scans", a.scanner.Stats().Scans),
		zap.Int64("opportunities", a.scanner.Stats().Opportunities))

	return nil
}
