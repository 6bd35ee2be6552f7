// Package app wires configuration, the market data client, the detector,
// the notification sink and the scan loop into a running monitor.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/gamma"
	"github.com/polyarb/arb-monitor/internal/notify"
	"github.com/polyarb/arb-monitor/internal/scanner"
	"github.com/polyarb/arb-monitor/pkg/cache"
	"github.com/polyarb/arb-monitor/pkg/config"
	"github.com/polyarb/arb-monitor/pkg/healthprobe"
	"github.com/polyarb/arb-monitor/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	probe      *healthprobe.Probe
	httpServer *httpserver.Server
	cache      cache.Cache
	client     *gamma.Client
	sink       notify.Sink
	scanner    *scanner.Scanner
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// Scanner exposes the scan loop, for one-shot runs.
func (a *App) Scanner() *scanner.Scanner {
	return a.scanner
}
