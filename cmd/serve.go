package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"event-portal/config"
	"event-portal/handlers"
	"event-portal/models"
	"event-portal/monitoring"
	"event-portal/security"
	"event-portal/services"
	"event-portal/utils"

	_ "event-portal/migrations"
)

// Start wires the portal together and runs the PocketBase server.
func Start() {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	cache := services.NewSnapshotCache(redisClient, cfg.SnapshotTTL)
	accountService := services.NewAccountService(app, cache)
	paymentService := services.NewPaymentService(app, cache, cfg.PublicBaseURL)
	seatService := services.NewSeatService(app, cache)

	monitor := monitoring.NewMonitor(app, cfg.MetricsInterval)
	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow)

	stationKeyHash := loadStationKeyHash(cfg)

	authHandler := handlers.NewAuthHandler(app, accountService, monitor)
	paymentHandler := handlers.NewPaymentHandler(app, paymentService, monitor)
	ticketHandler := handlers.NewTicketHandler(app, accountService)
	adminHandler := handlers.NewAdminHandler(app, accountService, paymentService, seatService, monitor)
	verifyHandler := handlers.NewVerifyHandler(accountService, stationKeyHash, monitor)

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.Environment == "development",
	})

	// Accounts created outside the register endpoint (dashboard,
	// future OAuth) still need their payment row.
	app.OnRecordAfterCreateSuccess("users").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetString("role") != models.RoleAdmin {
			if err := accountService.EnsurePayment(context.Background(), e.Record.Id); err != nil {
				slog.Error("ensure payment row", "user_id", e.Record.Id, "error", err)
			}
		}
		return e.Next()
	})

	go handleShutdown(redisClient)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		api := e.Router.Group("/api/v1")
		api.BindFunc(limiter.Middleware())

		// Auth endpoints
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		// Attendee endpoints
		api.GET("/me", authHandler.Me)
		api.POST("/me/receipt", paymentHandler.SubmitReceipt)
		api.GET("/me/ticket", ticketHandler.MyTicket)
		api.GET("/me/ticket/qr", ticketHandler.MyTicketQR)
		api.GET("/tiers", paymentHandler.GetTiers)

		// Admin endpoints
		api.GET("/admin/users", adminHandler.ListUsers)
		api.POST("/admin/payments/{userId}", adminHandler.UpdatePaymentStatus)
		api.POST("/admin/tickets/{userId}", adminHandler.AssignSeat)
		api.POST("/admin/users/{userId}/promote", adminHandler.Promote)

		// Verification endpoint (admin session or station key)
		api.POST("/verify", verifyHandler.Verify)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			if _, err := app.DB().NewQuery("SELECT 1").Execute(); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", func(e *core.RequestEvent) error {
				promhttp.Handler().ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		log.Println("Server routes registered")

		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// loadStationKeyHash resolves the gate station key. An unset key gets
// a generated one, printed once at startup so an operator can hand it
// to the scanning stations.
func loadStationKeyHash(cfg *config.Config) []byte {
	key := cfg.StationKey
	if key == "" {
		generated, err := utils.GenerateCode(16)
		if err != nil {
			log.Fatalf("generate station key: %v", err)
		}
		key = generated
		log.Printf("STATION_KEY not set, generated station key: %s", key)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash station key: %v", err)
	}
	return hash
}

// handleShutdown handles graceful shutdown
func handleShutdown(redisClient *redis.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	redisClient.Close()
}
