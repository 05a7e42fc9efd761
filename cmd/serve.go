package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"food-storefront/config"
	"food-storefront/events"
	"food-storefront/handlers"
	"food-storefront/metrics"
	"food-storefront/middleware"
	"food-storefront/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := config.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	log.WithField("driver", cfg.Database.Driver).Info("database connected and migrated")

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		publisher = kp
		log.WithField("topic", cfg.Kafka.Topic).Info("publishing order events to kafka")
	}
	defer publisher.Close()

	m := metrics.New()
	tokens := middleware.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)
	limiter.StartCleanup(time.Minute, ctx.Done())

	h := handlers.New(handlers.Deps{
		Store:   st,
		Tokens:  tokens,
		Events:  publisher,
		Metrics: m,
	})
	router := routes.NewRouter(h, routes.Options{
		Log:         log,
		Tokens:      tokens,
		Users:       st,
		Metrics:     m,
		Limiter:     limiter,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("server running on http://localhost:%s", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
