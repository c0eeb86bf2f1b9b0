package worker

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/monitoring"
	"github.com/ds124wfegd/eventmarket/internal/pkg/storage"

	"github.com/sirupsen/logrus"
)

// StaleUploadWorker removes raw banner uploads that were presigned and put
// but never processed. Processed banners are always WebP and are left alone.
type StaleUploadWorker struct {
	storage  storage.ObjectStorage
	prefix   string
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func NewStaleUploadWorker(objectStorage storage.ObjectStorage, prefix string, interval, maxAge time.Duration) *StaleUploadWorker {
	return &StaleUploadWorker{
		storage:  objectStorage,
		prefix:   prefix,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start sweeps every interval until ctx is done. A non-positive interval
// disables the worker.
func (w *StaleUploadWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		logrus.WithField("interval", w.interval).Warn("Stale upload worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Stale upload worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Stale upload worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns how many objects were removed.
func (w *StaleUploadWorker) Sweep(ctx context.Context) int {
	objects, err := w.storage.List(ctx, w.prefix)
	if err != nil {
		logrus.WithError(err).Error("Failed to list uploads")
		return 0
	}

	cutoff := w.now().Add(-w.maxAge)
	removed, failed := 0, 0

	for _, obj := range objects {
		if ctx.Err() != nil {
			logrus.Info("Stale upload sweep interrupted")
			break
		}

		if strings.EqualFold(path.Ext(obj.Key), ".webp") || obj.LastModified.After(cutoff) {
			continue
		}

		if err := w.storage.Delete(ctx, obj.Key); err != nil {
			logrus.WithError(err).WithField("key", obj.Key).Warn("Failed to remove stale upload")
			failed++
			continue
		}
		removed++
	}

	monitoring.StaleUploadsRemoved.Add(float64(removed))

	if removed > 0 || failed > 0 {
		logrus.WithFields(logrus.Fields{"removed": removed, "failed": failed}).Info("Stale upload sweep completed")
	}
	return removed
}
