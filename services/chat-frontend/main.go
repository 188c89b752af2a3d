package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/backend"
	"github.com/Sanket3212/LLM-food-order/internal/chat"
	"github.com/Sanket3212/LLM-food-order/internal/config"
	"github.com/Sanket3212/LLM-food-order/internal/metrics"
	"github.com/Sanket3212/LLM-food-order/internal/ticket"
	"github.com/Sanket3212/LLM-food-order/internal/web"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	orderBackend := backend.New(cfg.BackendURL, cfg.RequestTimeout)
	ticketSink := ticket.NewClient(ticket.Config{
		URL:       cfg.MantisURL,
		APIKey:    cfg.MantisAPIKey,
		ProjectID: cfg.MantisProjectID,
	}, cfg.TicketBulkhead)

	sessions := chat.NewManager(orderBackend, ticketSink, cfg.TicketDelay, cfg.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.StartSweeper(ctx, cfg.SessionTTL/2)

	router := gin.Default()
	router.Use(metrics.PrometheusMiddleware("chat-frontend"))
	router.Use(web.SessionMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	handler := web.NewHandler(sessions, orderBackend, ticketSink)
	handler.Register(router)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":        cfg.Port,
			"backend_url": cfg.BackendURL,
		}).Info("Chat frontend starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown: ", err)
	}

	// Let in-flight ticket tasks finish before exiting
	sessions.Drain()
	log.Info("Chat frontend stopped")
}
