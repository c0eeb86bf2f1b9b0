package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/auth"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Organizer *OrganizerHandler
	Payment   *PaymentHandler
	Event     *EventHandler
	Banner    *BannerHandler
	Ticket    *TicketHandler
	// Storage is set only for the local storage driver.
	Storage *StorageHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// local storage driver: bucket served from BucketPath
	Bucket     string
	BucketPath string
	// dependencies reported by GET /health
	HealthChecks map[string]func(ctx context.Context) error
}

func InitRoutes(cfg RouterConfig, h *Handlers, sessions auth.SessionProvider, organizers service.OrganizerService) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.Timeout))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		checks := gin.H{}
		for name, check := range cfg.HealthChecks {
			if err := check(c.Request.Context()); err != nil {
				checks[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		c.JSON(code, gin.H{
			"status": status,
			"checks": checks,
			"time":   time.Now().UTC(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.Storage != nil {
		router.PUT("/storage/*key", h.Storage.Upload)
		router.Static("/"+cfg.Bucket, cfg.BucketPath)
	}

	requireAuth := middleware.RequireAuth()
	requireOrganizer := middleware.RequireOrganizer(organizers)

	// RPC procedures
	rpc := router.Group("/rpc", middleware.Session(sessions))
	{
		rpc.POST("/healthCheck", func(c *gin.Context) {
			c.JSON(http.StatusOK, "OK")
		})

		organizer := rpc.Group("/organizer")
		{
			organizer.POST("/getCurrentOrganizerProfile", h.Organizer.GetCurrentOrganizerProfile)
			organizer.POST("/verifyBankAccount", requireAuth, h.Organizer.VerifyBankAccount)
			organizer.POST("/becomeOrganizer", requireAuth, h.Organizer.BecomeOrganizer)
		}

		payment := rpc.Group("/payment")
		{
			payment.POST("/getAllBanks", h.Payment.GetAllBanks)
			payment.POST("/verifyBankAccount", h.Payment.VerifyBankAccount)
		}

		event := rpc.Group("/event", requireAuth, requireOrganizer)
		{
			event.POST("/getEventDraft", h.Event.GetEventDraft)
			event.POST("/saveEventDetails", h.Event.SaveEventDetails)
			event.POST("/resolveWizardStep", h.Event.ResolveWizardStep)
		}

		banner := rpc.Group("/banner", requireAuth, requireOrganizer)
		{
			banner.POST("/generatePresignedUrl", h.Banner.GeneratePresignedURL)
			banner.POST("/processBanner", h.Banner.ProcessBanner)
		}

		ticket := rpc.Group("/ticket", requireAuth, requireOrganizer)
		{
			ticket.POST("/createTicketType", h.Ticket.CreateTicketType)
			ticket.POST("/listTicketTypes", h.Ticket.ListTicketTypes)
		}
	}

	// Wizard navigation
	router.GET("/organizer/events/:id/create-event",
		middleware.Session(sessions), requireAuth, requireOrganizer,
		h.Event.CreateEventWizard,
	)

	return router
}
