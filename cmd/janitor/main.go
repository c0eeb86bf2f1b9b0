// janitor deletes storage objects the API reported as orphaned
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/eventmarket/config"
	"github.com/ds124wfegd/eventmarket/internal/appServer"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/pkg/kafka"
	"github.com/ds124wfegd/eventmarket/internal/pkg/storage"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment")
	}

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}
	appServer.SetupLogging(&cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objectStorage, err := storage.Open(ctx, &cfg.Storage)
	if err != nil {
		logrus.Fatalf("Failed to initialize object storage: %v", err)
	}

	remove := func(ctx context.Context, orphan entity.OrphanedObject) error {
		err := objectStorage.Delete(ctx, orphan.Key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil
		}
		return err
	}

	if err := kafka.ConsumeOrphans(ctx, cfg.Kafka.Brokers, cfg.Kafka.OrphanTopic, cfg.Kafka.GroupID, remove); err != nil {
		logrus.Fatalf("Orphan consumer failed: %v", err)
	}
}
