package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/handler"
	"github.com/MarkCruse/k3y-open-sessions/internal/middleware"
	"github.com/MarkCruse/k3y-open-sessions/pkg/config"
	"github.com/MarkCruse/k3y-open-sessions/pkg/logger"
	corsmiddleware "github.com/MarkCruse/k3y-open-sessions/pkg/middleware/cors"
	reqidmiddleware "github.com/MarkCruse/k3y-open-sessions/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(source *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the open-slot dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr, err := bootstrap(*source)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Port = port
			}
			a, err := newApp(cfg, logr)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from PORT)")
	return cmd
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics, "/metrics", "/health", "/ready"))

	handler.Register(r, a.cfg.APIPrefix, a.handlers())

	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

func serve(ctx context.Context, a *app) error {
	addr := fmt.Sprintf(":%d", a.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Sugar().Infow("server starting", "addr", addr, "env", a.cfg.Env, "source", a.cfg.Schedule.Source)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
