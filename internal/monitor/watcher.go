// ==================================
// File: internal/monitor/watcher.go
// ==================================
package monitor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/BankkRoll/pumpfundler-SDK/internal/curve"
	"github.com/BankkRoll/pumpfundler-SDK/internal/events"
	"github.com/BankkRoll/pumpfundler-SDK/internal/ledger"
	"github.com/BankkRoll/pumpfundler-SDK/internal/pumpfun"
)

// UpdateCallback is called after each successful curve poll.
type UpdateCallback func(state *curve.BondingCurveState, marketCapSOL uint64)

// CurveWatcher polls a token's bonding curve on an interval and reports
// reserve changes. When the curve completes it publishes a completion
// event and stops.
type CurveWatcher struct {
	client   ledger.Client
	bus      *events.Bus
	mint     solana.PublicKey
	interval time.Duration
	logger   *zap.Logger
	callback UpdateCallback

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCurveWatcher creates a watcher for one mint. bus and callback may be
// nil.
func NewCurveWatcher(client ledger.Client, bus *events.Bus, mint solana.PublicKey, interval time.Duration, logger *zap.Logger, callback UpdateCallback) *CurveWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &CurveWatcher{
		client:   client,
		bus:      bus,
		mint:     mint,
		interval: interval,
		logger:   logger.Named("monitor"),
		callback: callback,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the polling loop until the curve completes or Stop is called.
// It blocks; run it on its own goroutine.
func (w *CurveWatcher) Start() {
	w.logger.Info("Starting curve watcher",
		zap.String("mint", w.mint.String()),
		zap.Duration("interval", w.interval))

	if done := w.poll(); done {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if done := w.poll(); done {
				return
			}
		case <-w.ctx.Done():
			w.logger.Debug("Curve watcher stopped")
			return
		}
	}
}

// Stop ends the polling loop.
func (w *CurveWatcher) Stop() {
	w.cancel()
}

// poll fetches the curve state once. Fetch errors are logged and the loop
// keeps going; only completion or cancellation ends it.
func (w *CurveWatcher) poll() (done bool) {
	state, err := pumpfun.FetchBondingCurveState(w.ctx, w.client, w.mint, w.logger)
	if err != nil {
		if w.ctx.Err() != nil {
			return true
		}
		w.logger.Warn("Curve poll failed",
			zap.String("mint", w.mint.String()),
			zap.Error(err))
		return false
	}

	marketCap := state.GetMarketCapSOL()
	if w.callback != nil {
		w.callback(state, marketCap)
	}

	if state.Complete {
		w.logger.Info("Bonding curve complete",
			zap.String("mint", w.mint.String()),
			zap.Uint64("market_cap_sol", marketCap))
		w.publishComplete()
		return true
	}
	return false
}

func (w *CurveWatcher) publishComplete() {
	if w.bus == nil {
		return
	}
	bondingCurve, _ := pumpfun.DeriveBondingCurve(w.mint)
	_ = w.bus.Publish(events.CurveCompletedEvent{
		BaseEvent:    events.BaseEvent{EventType: events.CurveCompleted, EventTime: time.Now()},
		Mint:         w.mint,
		BondingCurve: bondingCurve,
	})
}
