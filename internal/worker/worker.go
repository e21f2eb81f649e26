// Package worker runs the background sync scheduler: both flows fire on an
// interval, with the canonical flow's own daily throttle making the frequent
// ticks cheap no-ops.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/Roi-salemm/lunaris/internal/app"
	"github.com/Roi-salemm/lunaris/internal/logger"
)

type Worker struct {
	Sync     *app.SyncService
	Cards    *app.CardService
	Interval time.Duration
	Logger   *logger.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// running guards against a tick firing while the previous one is still
	// syncing; the skipped tick is dropped, not queued.
	running sync.Mutex
}

func NewWorker(syncService *app.SyncService, cards *app.CardService, interval time.Duration, log *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		Sync:     syncService,
		Cards:    cards,
		Interval: interval,
		Logger:   log.WithComponent("worker"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) Start() {
	w.Logger.Info("Starting sync worker", "interval", w.Interval.String())
	w.wg.Add(1)
	go w.loop()
}

func (w *Worker) Stop() {
	w.Logger.Info("Stopping sync worker")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()

	// Populate the cache right away instead of waiting a full interval.
	w.runOnce()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *Worker) runOnce() {
	if !w.running.TryLock() {
		w.Logger.Debug("Previous sync still in flight, skipping tick")
		return
	}
	defer w.running.Unlock()

	changed := false

	if result, err := w.Sync.SyncEphemeris(w.ctx, false); err != nil {
		if w.ctx.Err() != nil {
			return
		}
		w.Logger.Error("Ephemeris sync failed", "error", err)
	} else if result.FetchedEphemeris+result.FetchedEvents > 0 {
		changed = true
	}

	if result, err := w.Sync.SyncCanonical(w.ctx, false); err != nil {
		if w.ctx.Err() != nil {
			return
		}
		w.Logger.Error("Canonical sync failed", "error", err)
	} else if !result.Skipped && result.Fetched > 0 {
		changed = true
	}

	if changed {
		w.Cards.Invalidate()
	}
}
