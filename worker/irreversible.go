package worker

import (
	"context"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
)

// StartIrreversibleJob polls the latest irreversible block every
// IrreversibleInterval and saves it when it changes. Returns when ctx is done.
func (w *Worker) StartIrreversibleJob(ctx context.Context) {
	logWorker("irreversible", "start irreversible job", "interval", w.cfg.IrreversibleInterval.String())
	last := w.loadIrreversible()
	for {
		if marker := w.pollIrreversible(ctx, last); marker != nil {
			last = marker
		}
		if !restInJob(ctx, w.cfg.IrreversibleInterval) {
			logWorker("irreversible", "irreversible job stopped")
			return
		}
	}
}

// loadIrreversible returns the marker saved by a previous run, so an unchanged
// marker is not saved again after restart
func (w *Worker) loadIrreversible() *blocks.IrreversibleMarker {
	if w.cfg.Markers == nil {
		return nil
	}
	marker, err := w.cfg.Markers.GetIrreversible()
	if err != nil {
		logWorkerError("irreversible", "load saved irreversible failed", err)
		return nil
	}
	if marker == nil {
		return nil
	}
	w.metrics.lastIrreversible.Set(float64(marker.Number))
	w.updateStatus(func(status *ScanStatus) { status.Irreversible = marker })
	logWorker("irreversible", "load saved irreversible", "number", marker.Number, "id", marker.ID)
	return marker
}

// pollIrreversible returns the new saved marker, or nil if nothing changed
func (w *Worker) pollIrreversible(ctx context.Context, last *blocks.IrreversibleMarker) *blocks.IrreversibleMarker {
	marker, err := w.cfg.Tracker.Latest(ctx)
	if err != nil {
		if blocks.IsRetryRequired(err) {
			w.metrics.irreversibleRetry.Inc()
			logWorkerTrace("irreversible", "latest irreversible is not available", "err", err)
		} else if ctx.Err() == nil {
			logWorkerError("irreversible", "get latest irreversible failed", err)
		}
		return nil
	}
	if last != nil && *last == *marker {
		return nil
	}
	for _, save := range w.cfg.MarkerSavers {
		if err := w.retry(ctx, func() error { return save(ctx, marker) }, func(err error, wait time.Duration) {
			logWorkerWarn("irreversible", "save irreversible will retry", "number", marker.Number, "wait", wait.String(), "err", err)
		}); err != nil {
			logWorkerError("irreversible", "save irreversible failed", err, "number", marker.Number)
			return nil
		}
	}
	w.metrics.lastIrreversible.Set(float64(marker.Number))
	w.updateStatus(func(status *ScanStatus) { status.Irreversible = marker })
	logWorker("irreversible", "update latest irreversible", "number", marker.Number, "id", marker.ID)
	return marker
}
