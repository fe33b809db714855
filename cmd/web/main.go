package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/internal/common/messaging"
	"github.com/rizkirmdhn/vidloader/internal/controller"
	"github.com/rizkirmdhn/vidloader/internal/launcher"
	"github.com/rizkirmdhn/vidloader/internal/video"
	"github.com/rizkirmdhn/vidloader/internal/web/handler"
	"github.com/rizkirmdhn/vidloader/internal/web/websocket"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load the configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(cfg)

	// Print the Web panel configuration
	log.WithFields(logrus.Fields{
		"component": "web_main",
		"config":    fmt.Sprintf("%+v", cfg.WebPanel),
		"backend":   cfg.Backend.BaseURL,
	}).Debug("Web panel configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()

	// Wire the form controller
	httpClient := &http.Client{Timeout: cfg.Backend.RequestTimeout}
	remote := video.NewRemoteFetcher(cfg.Backend.BaseURL, httpClient, log)
	trigger := video.NewTrigger(cfg.Backend.BaseURL, launcher.NewRelayLauncher(hub), log)
	ctrl := controller.New(remote, video.NewSyntheticFetcher(), trigger, log)

	// The event bus is optional
	var msgClient messaging.Client
	if cfg.RabbitMq.URL != "" {
		client, err := messaging.NewRabbitMQClient(&cfg.RabbitMq, log)
		if err != nil {
			log.WithFields(logrus.Fields{
				"component": "web_main",
				"error":     err,
			}).Fatal("Failed to create RabbitMQ client")
		}
		defer client.Close()

		msgClient = client
		ctrl.SetPublisher(client, cfg.App.Name)
	}

	// Check environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the gin router
	r := gin.Default()

	// Set up static files
	r.Static("/static", "internal/web/static")

	// Set up templates
	r.LoadHTMLGlob("internal/web/templates/*")

	// Setup Handlers
	h := handler.NewHandler(cfg, log, ctrl, hub, msgClient)

	// Register routes
	h.RegisterRoutes(r)

	if msgClient != nil {
		go func() {
			if err := h.ConsumeEvents(ctx); err != nil {
				log.WithFields(logrus.Fields{
					"component": "web_main",
					"error":     err,
				}).Error("Event consumer stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.WebPanel.Host, strconv.Itoa(cfg.WebPanel.Port)),
		Handler: r,
	}

	// Start the web server
	go func() {
		log.WithFields(logrus.Fields{
			"component": "web_main",
			"addr":      srv.Addr,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithFields(logrus.Fields{
				"component": "web_main",
				"error":     err,
			}).Fatal("Failed to start server")
		}
	}()

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a termination signal
	sig := <-sigCh
	log.WithFields(logrus.Fields{
		"component": "web_main",
		"signal":    sig,
	}).Info("Received signal, shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithFields(logrus.Fields{
			"component": "web_main",
			"error":     err,
		}).Error("Server shutdown failed")
	}
}
