package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/innovo-consulting/funding-console/config"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth/middleware"
	"github.com/innovo-consulting/funding-console/internal/logging"
)

const ServiceName = "funding-console"

// Serve runs the web console until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	SetGinMode(cfg.App.Environment)
	log := logging.L()

	store, closeStore, err := OpenSessionStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing session store", zap.Error(err))
		}
	}()

	client := apiclient.New(cfg.API.BaseURL, nil,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithUploadTimeout(cfg.API.UploadTimeout),
	)

	router := BuildRouter(RouterDeps{
		ServiceName: ServiceName,
		Version:     cfg.App.Version,
		Client:      client,
		Sessions:    NewSessionManager(store),
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		CORSOrigins:              cfg.Server.CORSOrigins,
		LoginRatePerMinute:       cfg.Server.LoginRatePerMinute,
		RollbackOrphanedPrograms: cfg.API.RollbackOrphanedPrograms,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr), zap.String("api_url", cfg.API.BaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// SetGinMode maps APP_ENV onto gin's modes.
func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}
