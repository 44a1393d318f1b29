// Package server boots the process-wide dependencies and runs the HTTP and
// gRPC listeners until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/graph"
	"github.com/shashiranjanraj/rigparts/app/jobs"
	"github.com/shashiranjanraj/rigparts/app/listeners"
	"github.com/shashiranjanraj/rigparts/app/routes"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/internal/kernel"
	"github.com/shashiranjanraj/rigparts/pkg/cache"
	"github.com/shashiranjanraj/rigparts/pkg/database"
	"github.com/shashiranjanraj/rigparts/pkg/event"
	"github.com/shashiranjanraj/rigparts/pkg/grpc"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/queue"
	"github.com/shashiranjanraj/rigparts/pkg/schedule"
	"github.com/shashiranjanraj/rigparts/pkg/storage"
	"github.com/shashiranjanraj/rigparts/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// App holds what every command needs once the process is booted.
type App struct {
	DB        *gorm.DB
	Hub       *ws.Hub
	Campaigns *services.CampaignService
	Decoder   *services.VINDecoder
}

// Boot loads config and connects the database, Redis, storage and the queue.
// Redis is optional: without it the cache and sessions degrade and the queue
// stays in memory.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}
	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "error", err)
	}
	if err := storage.Connect(ctx); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	switch {
	case config.QueueDriver() == "redis" && cache.RDB != nil:
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	case config.QueueDriver() == "redis":
		logger.Warn("QUEUE_DRIVER=redis but redis is unavailable, using memory queue")
	}
	queue.UseStore(queue.GormFailedStore{DB: database.DB})

	app := &App{
		DB:        database.DB,
		Hub:       ws.NewHub(),
		Campaigns: services.NewCampaignService(database.DB),
		Decoder:   services.NewVINDecoder(),
	}

	jobs.Register(queue.Default(), app.Campaigns)
	listeners.Register(app.Hub)
	schedule.EveryMinute().
		Name("campaigns:send-due").
		WithoutOverlapping().
		Run(jobs.SendDue(app.Campaigns))

	return app, nil
}

// Close releases the connections Boot opened.
func (a *App) Close() {
	event.Wait()
	if err := database.Close(); err != nil {
		logger.Warn("database close failed", "error", err)
	}
}

// Serve runs the HTTP server, the gRPC health server, the live feed hub and
// in-process queue workers. It returns once ctx is cancelled and everything
// has drained, or as soon as one listener fails.
func Serve(ctx context.Context, app *App) error {
	schema, err := graph.NewSchema(app.DB)
	if err != nil {
		return fmt.Errorf("graphql: %w", err)
	}

	k := kernel.NewHTTPKernel(routes.Deps{
		DB:        app.DB,
		Hub:       app.Hub,
		Campaigns: app.Campaigns,
		Decoder:   app.Decoder,
		Schema:    schema,
	})

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcLis, err := grpc.Listen(config.GRPCPort())
	if err != nil {
		return err
	}
	grpcSrv := grpc.New()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		queue.StartWorkers(gctx, config.QueueWorkers()).Wait()
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", httpSrv.Addr, "env", config.AppEnv())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	g.Go(func() error { return grpcSrv.Serve(grpcLis) })

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcSrv.Stop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
