// launching the server, postgres, redis, storage, kafka, rabbitMQ
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/eventmarket/config"
	"github.com/ds124wfegd/eventmarket/internal/auth"
	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	cache "github.com/ds124wfegd/eventmarket/internal/database/redis"
	"github.com/ds124wfegd/eventmarket/internal/monitoring"
	"github.com/ds124wfegd/eventmarket/internal/pkg/kafka"
	"github.com/ds124wfegd/eventmarket/internal/pkg/paystack"
	"github.com/ds124wfegd/eventmarket/internal/pkg/processor"
	"github.com/ds124wfegd/eventmarket/internal/pkg/storage"
	"github.com/ds124wfegd/eventmarket/internal/rabbitMQ"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport"
	"github.com/ds124wfegd/eventmarket/internal/worker"
	"github.com/ds124wfegd/eventmarket/pkg/postgres"
	"github.com/ds124wfegd/eventmarket/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// SetupLogging applies the configured level to the JSON logrus logger.
func SetupLogging(cfg *config.ServerConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func NewServer(cfg *config.Config) {

	SetupLogging(&cfg.Server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	bannerRepo := repository.NewBannerRepository(db)
	ticketRepo := repository.NewTicketTypeRepository(db)
	eventRepo := repository.NewEventRepository(db, bannerRepo, ticketRepo)
	organizerRepo := repository.NewOrganizerRepository(db)

	// Cache
	cacheRepo := cache.NewNoopCache()
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to connect to Redis: %v. Continuing without cache...", err)
		} else {
			defer redisClient.Close()
			cacheRepo = cache.NewCacheRepository(redisClient, cfg.Redis.BanksTTL, cfg.Redis.OrganizerTTL)
			logrus.Info("Redis cache initialized")
		}
	}

	// Object storage
	objectStorage, err := storage.Open(ctx, &cfg.Storage)
	if err != nil {
		logrus.Fatalf("Failed to initialize object storage: %v", err)
	}

	orphanProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrphanTopic)
	defer orphanProducer.Close()

	healthChecks := map[string]func(ctx context.Context) error{
		"postgres": db.PingContext,
	}

	// Recipient link retries
	var recipientQueue rabbitMQ.Queue
	if cfg.Rabbit.URL != "" {
		rabbit, err := rabbitMQ.NewDelayQueue(&cfg.Rabbit)
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without recipient retries...", err)
		} else {
			defer rabbit.Close()
			recipientQueue = rabbit
			healthChecks["rabbitmq"] = rabbit.HealthCheck
			logrus.Info("RabbitMQ queue initialized")
		}
	} else {
		logrus.Warn("RabbitMQ url not provided, recipient retries disabled")
	}

	paystackClient := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.Timeout, monitoring.ObservePaystack)

	// Initialize services
	eventService := service.NewEventService(eventRepo)
	bannerService := service.NewBannerService(eventRepo, bannerRepo, objectStorage, processor.NewImageProcessor(),
		orphanProducer, cfg.Storage.PublicURL, cfg.Storage.PresignTTL)
	ticketService := service.NewTicketService(eventRepo, ticketRepo)
	paymentService := service.NewPaymentService(paystackClient, cacheRepo)
	organizerService := service.NewOrganizerService(organizerRepo, paystackClient, cacheRepo, recipientQueue,
		service.RecipientRetryConfig{MaxAttempts: cfg.Rabbit.MaxAttempts, BaseDelay: cfg.Rabbit.BaseDelay})

	if recipientQueue != nil {
		go func() {
			if err := recipientQueue.Consume(ctx, organizerService.HandleRecipientLink); err != nil {
				logrus.Errorf("Recipient link consumer error: %v", err)
			}
		}()
		logrus.Info("Recipient link consumer started")
	}

	// Initialize cleanup worker
	cleanupWorker := worker.NewStaleUploadWorker(objectStorage, service.BannerPrefix, cfg.Worker.CleanupInterval, cfg.Worker.StaleUploadAge)
	go cleanupWorker.Start(ctx)

	// Initialize handlers
	handlers := &transport.Handlers{
		Organizer: transport.NewOrganizerHandler(organizerService, paymentService),
		Payment:   transport.NewPaymentHandler(paymentService),
		Event:     transport.NewEventHandler(eventService, cfg.Server.WebURL),
		Banner:    transport.NewBannerHandler(bannerService),
		Ticket:    transport.NewTicketHandler(ticketService),
	}

	routerCfg := transport.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Bucket:         cfg.Storage.Bucket,
		HealthChecks:   healthChecks,
	}
	if files, ok := objectStorage.(*storage.FileStorage); ok {
		handlers.Storage = transport.NewStorageHandler(files)
		routerCfg.BucketPath = files.BasePath()
	}

	sessions := auth.NewJWTSessionProvider(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Auth.Expiration)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(routerCfg, handlers, sessions, organizerService)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
