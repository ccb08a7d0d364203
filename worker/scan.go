package worker

import (
	"context"
	"errors"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/cenkalti/backoff/v4"
)

var errNoStartBlock = errors.New("no scan cursor, start block or irreversible source")

// StartScanJob reads blocks one by one from the saved cursor and saves them.
// A not found block is retried after ScanInterval, integration errors are
// retried with exponential backoff. Returns when ctx is done or on
// validation errors.
func (w *Worker) StartScanJob(ctx context.Context) error {
	next, err := w.initScanCursor(ctx)
	if err != nil {
		return err
	}
	logWorker("scan", "start scan job", "start", next)
	w.updateStatus(func(status *ScanStatus) { status.NextBlock = next })

	for {
		result, err := w.readBlock(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if blocks.IsValidationError(err) {
				return err
			}
			logWorkerError("scan", "read block failed", err, "number", next)
			if !restInJob(ctx, w.cfg.MaxRetryInterval) {
				return ctx.Err()
			}
			continue
		}
		if result.NotFound {
			w.metrics.blocksRead.WithLabelValues("not_found").Inc()
			w.updateStatus(func(status *ScanStatus) { status.NotFoundCount++ })
			logWorkerTrace("scan", "block not found", "number", next)
			if !restInJob(ctx, w.cfg.ScanInterval) {
				return ctx.Err()
			}
			continue
		}

		if err = w.saveBlock(ctx, result); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logWorkerError("scan", "save block failed", err, "number", next)
			if !restInJob(ctx, w.cfg.MaxRetryInterval) {
				return ctx.Err()
			}
			continue
		}
		w.onBlockSaved(result)
		next++
	}
}

func (w *Worker) initScanCursor(ctx context.Context) (blocks.BlockNumber, error) {
	if w.cfg.Cursor != nil {
		next, exist, err := w.cfg.Cursor.GetScanCursor()
		if err != nil {
			return 0, err
		}
		if exist {
			return next, nil
		}
	}
	if w.cfg.StartBlock > 0 {
		return w.cfg.StartBlock, nil
	}
	if w.cfg.Tracker == nil {
		return 0, errNoStartBlock
	}
	var start blocks.BlockNumber
	err := w.retry(ctx, func() error {
		marker, err := w.cfg.Tracker.Latest(ctx)
		if err != nil {
			return err
		}
		start = marker.Number
		return nil
	}, nil)
	return start, err
}

func (w *Worker) readBlock(ctx context.Context, number blocks.BlockNumber) (result *blocks.BlockResult, err error) {
	err = w.retry(ctx, func() error {
		start := time.Now()
		result, err = w.cfg.Reader.ReadBlock(ctx, number)
		w.metrics.readDuration.Observe(time.Since(start).Seconds())
		if blocks.IsValidationError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, func(err error, wait time.Duration) {
		w.metrics.readRetries.Inc()
		logWorkerWarn("scan", "read block will retry", "number", number, "wait", wait.String(), "err", err)
	})
	return result, err
}

func (w *Worker) saveBlock(ctx context.Context, result *blocks.BlockResult) error {
	return w.retry(ctx, func() error {
		for _, save := range w.cfg.BlockSavers {
			if err := save(result); err != nil {
				return err
			}
		}
		if w.cfg.Cursor != nil {
			return w.cfg.Cursor.SetScanCursor(result.Number + 1)
		}
		return nil
	}, func(err error, wait time.Duration) {
		logWorkerWarn("scan", "save block will retry", "number", result.Number, "wait", wait.String(), "err", err)
	})
}

func (w *Worker) onBlockSaved(result *blocks.BlockResult) {
	var executed, failed int
	for i := range result.Transactions {
		if result.Transactions[i].Executed != nil {
			executed++
		} else {
			failed++
		}
	}
	w.metrics.blocksRead.WithLabelValues("found").Inc()
	w.metrics.transactions.WithLabelValues("executed").Add(float64(executed))
	w.metrics.transactions.WithLabelValues("failed").Add(float64(failed))
	w.metrics.lastBlock.Set(float64(result.Number))
	w.updateStatus(func(status *ScanStatus) {
		status.NextBlock = result.Number + 1
		status.LastBlock = result.Number
		status.LastBlockID = result.ID
		status.BlocksRead++
	})
	logWorker("scan", "block saved", "number", result.Number, "id", result.ID, "executed", executed, "failed", failed)
}

// retry calls 'operation' with exponential backoff, at most RetryCount retries
func (w *Worker) retry(ctx context.Context, operation backoff.Operation, notify backoff.Notify) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = w.cfg.RetryInterval
	expBackoff.MaxInterval = w.cfg.MaxRetryInterval
	expBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, w.cfg.RetryCount), ctx)
	err := backoff.RetryNotify(operation, policy, notify)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
