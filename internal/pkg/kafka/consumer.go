package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	minReadBackoff = 100 * time.Millisecond
	maxReadBackoff = 5 * time.Second
)

// readBackoff is the pause after the given number of consecutive read errors.
func readBackoff(failures int) time.Duration {
	if failures < 1 {
		return 0
	}
	if failures > 6 {
		return maxReadBackoff
	}
	return min(minReadBackoff<<(failures-1), maxReadBackoff)
}

// OrphanHandler removes one storage object that the API could not delete inline.
type OrphanHandler func(ctx context.Context, orphan entity.OrphanedObject) error

// ConsumeOrphans reads orphaned-object events until ctx is cancelled.
func ConsumeOrphans(ctx context.Context, brokers []string, topic, groupID string, handle OrphanHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.Infof("Orphan consumer started on %v, topic %s", brokers, topic)

	failures := 0
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				logrus.Info("Orphan consumer stopped")
				return nil
			}
			failures++
			wait := readBackoff(failures)
			logrus.WithError(err).WithField("retry_in", wait).Error("Error reading message from Kafka")

			select {
			case <-ctx.Done():
				logrus.Info("Orphan consumer stopped")
				return nil
			case <-time.After(wait):
			}
			continue
		}
		failures = 0

		var orphan entity.OrphanedObject
		if err := json.Unmarshal(msg.Value, &orphan); err != nil {
			logrus.WithError(err).Warnf("Skipping malformed orphan message at offset %d", msg.Offset)
			continue
		}

		if err := handle(ctx, orphan); err != nil {
			logrus.WithError(err).WithField("key", orphan.Key).Error("Failed to remove orphaned object")
			continue
		}

		logrus.WithField("key", orphan.Key).Info("Removed orphaned object")
	}
}
