package worker

import (
	"context"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
)

func logWorker(job, subject string, context ...interface{}) {
	log.Info("["+job+"] "+subject, context...)
}

func logWorkerError(job, subject string, err error, context ...interface{}) {
	fields := []interface{}{"err", err}
	fields = append(fields, context...)
	log.Error("["+job+"] "+subject, fields...)
}

func logWorkerWarn(job, subject string, context ...interface{}) {
	log.Warn("["+job+"] "+subject, context...)
}

func logWorkerTrace(job, subject string, context ...interface{}) {
	log.Trace("["+job+"] "+subject, context...)
}

// restInJob sleeps 'duration', returns false if ctx is done before
func restInJob(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
