package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"barbearia/internal/config"
	"barbearia/internal/email"
	appointmentHandler "barbearia/internal/handler/appointment"
	healthHandler "barbearia/internal/handler/health"
	"barbearia/internal/middleware"
	"barbearia/internal/model"
	"barbearia/internal/repository/file"
	"barbearia/internal/router"
	appointmentService "barbearia/internal/service/appointment"
	"barbearia/internal/service/notification"
	"barbearia/pkg/logger"
	"barbearia/pkg/messaging"
	redisbroker "barbearia/pkg/messaging/redis"
	"barbearia/pkg/metrics"
)

func main() {
	seed := flag.Bool("seed", false, "seed sample appointments into an empty store")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(nil)
	m := metrics.NewMetrics("barbearia")

	if cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			l.Fatal(err, "failed to create store directory")
		}
	}

	store, err := file.Open(cfg.Store.Path, l, m)
	if err != nil {
		l.Fatal(err, "failed to open appointment store")
	}

	var broker messaging.Broker = messaging.NewNopBroker()
	if cfg.Broker.RedisURL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:        cfg.Broker.RedisURL,
			MaxRetries: 3,
		}, l.Zerolog())
		if err != nil {
			l.Fatal(err, "failed to connect to Redis")
		}
	}
	defer broker.Close()

	dispatcher := notification.NewDispatcher(
		email.NewSMTPSender(cfg.SMTP),
		notification.DefaultConfig(),
		l,
		m,
	)

	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Start(dispatchCtx)

	svc := appointmentService.NewService(store, dispatcher, broker, l, m)

	if *seed {
		seedAppointments(svc, l)
	}

	r := router.NewRouter(
		router.Config{
			RateLimit: 50,
			RateBurst: 100,
			CORS:      middleware.DefaultCORSConfig(),
			StaticDir: "public",
		},
		appointmentHandler.NewHandler(svc, dispatcher),
		healthHandler.NewHandler(store),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		l.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Fatal(err, "server forced to shutdown")
	}

	l.Info("server exited properly")
}

// seedAppointments loads two sample records for local development, matching
// the fixtures the web client expects.
func seedAppointments(svc *appointmentService.Service, l *logger.Logger) {
	ctx := context.Background()

	existing, err := svc.List(ctx)
	if err != nil || len(existing) > 0 {
		return
	}

	samples := []model.CreateAppointmentRequest{
		{
			Name:         "João Silva",
			Phone:        "(31) 99999-9999",
			Email:        "joao@email.com",
			Service:      "Corte + Barba",
			Date:         "2024-12-25",
			Time:         "14:00",
			Notes:        "Primeiro cliente",
			Status:       string(model.AppointmentStatusConfirmed),
			ServicePrice: 70,
		},
		{
			Name:         "Maria Santos",
			Phone:        "(31) 98888-8888",
			Email:        "maria@email.com",
			Service:      "Corte Clássico",
			Date:         "2024-12-26",
			Time:         "15:30",
			ServicePrice: 45,
		},
	}

	for _, sample := range samples {
		if _, err := svc.Create(ctx, &sample); err != nil {
			l.Error(err, "failed to seed appointment", "name", sample.Name)
		}
	}
	l.Info("seeded sample appointments", "count", len(samples))
}
