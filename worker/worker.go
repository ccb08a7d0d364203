// Package worker runs the blocks scan job and the irreversible marker job.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/prometheus/client_golang/prometheus"
)

const interval = 10 * time.Millisecond

// BlockReader reads normalized blocks
type BlockReader interface {
	ReadBlock(ctx context.Context, number blocks.BlockNumber) (*blocks.BlockResult, error)
}

// IrreversibleSource reports the latest irreversible block
type IrreversibleSource interface {
	Latest(ctx context.Context) (*blocks.IrreversibleMarker, error)
}

// CursorStore persists the next block number to scan
type CursorStore interface {
	GetScanCursor() (next blocks.BlockNumber, exist bool, err error)
	SetScanCursor(next blocks.BlockNumber) error
}

// MarkerStore reads the last saved irreversible marker, nil if not saved
type MarkerStore interface {
	GetIrreversible() (*blocks.IrreversibleMarker, error)
}

// BlockSaver saves a found block
type BlockSaver func(result *blocks.BlockResult) error

// MarkerSaver saves or publishes an irreversible marker
type MarkerSaver func(ctx context.Context, marker *blocks.IrreversibleMarker) error

// Config worker config
type Config struct {
	Reader       BlockReader
	Tracker      IrreversibleSource
	Cursor       CursorStore
	Markers      MarkerStore
	BlockSavers  []BlockSaver
	MarkerSavers []MarkerSaver

	// StartBlock is used when no cursor is saved, 0 means the latest irreversible block
	StartBlock           blocks.BlockNumber
	ScanInterval         time.Duration
	IrreversibleInterval time.Duration
	RetryCount           uint64
	RetryInterval        time.Duration
	MaxRetryInterval     time.Duration

	// Registerer registers worker metrics if not nil
	Registerer prometheus.Registerer
}

// ScanStatus scan status
type ScanStatus struct {
	NextBlock     blocks.BlockNumber         `json:"nextBlock"`
	LastBlock     blocks.BlockNumber         `json:"lastBlock"`
	LastBlockID   string                     `json:"lastBlockId,omitempty"`
	BlocksRead    uint64                     `json:"blocksRead"`
	NotFoundCount uint64                     `json:"notFoundCount"`
	Irreversible  *blocks.IrreversibleMarker `json:"irreversible,omitempty"`
}

// Worker scans blocks and tracks the irreversible marker
type Worker struct {
	cfg     Config
	metrics *metrics

	mu     sync.RWMutex
	status ScanStatus
}

// NewWorker new worker
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		cfg:     *cfg,
		metrics: newMetrics(cfg.Registerer),
	}
}

// GetScanStatus get scan status
func (w *Worker) GetScanStatus() ScanStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := w.status
	if status.Irreversible != nil {
		marker := *status.Irreversible
		status.Irreversible = &marker
	}
	return status
}

func (w *Worker) updateStatus(update func(status *ScanStatus)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	update(&w.status)
}

// StartWork starts jobs and blocks until ctx is done and all jobs exit
func (w *Worker) StartWork(ctx context.Context, enableScan bool) {
	logWorker("worker", "start blocks reader worker", "enableScan", enableScan)

	var wg sync.WaitGroup
	if w.cfg.Tracker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.StartIrreversibleJob(ctx)
		}()
		time.Sleep(interval)
	}

	if enableScan {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.StartScanJob(ctx); err != nil && ctx.Err() == nil {
				logWorkerError("scan", "scan job stopped", err)
			}
		}()
	}

	wg.Wait()
	logWorker("worker", "blocks reader worker stopped")
}
