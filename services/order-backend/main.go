package main

import (
	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/metrics"
	"github.com/Sanket3212/LLM-food-order/internal/orderbackend"
)

type backendConfig struct {
	Port string `envconfig:"PORT" default:"8081"`
}

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	var cfg backendConfig
	if err := envconfig.Process("backend", &cfg); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	service := orderbackend.NewService(orderbackend.DefaultMenu())
	handler := orderbackend.NewHandler(service)

	router := gin.Default()
	router.Use(metrics.PrometheusMiddleware("order-backend"))

	handler.Register(router)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.WithField("port", cfg.Port).Info("Order backend (dev stand-in) starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
