// cmd/lifecycle-controller/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"push-lifecycle/internal/api"
	consolenative "push-lifecycle/internal/collaborators/console-native"
	logview "push-lifecycle/internal/collaborators/log-view"
	redispush "push-lifecycle/internal/collaborators/redis-push"
	"push-lifecycle/internal/common/config"
	"push-lifecycle/internal/common/database"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/observability"
	"push-lifecycle/internal/controller/lifecycle"
	simulationharness "push-lifecycle/internal/controller/simulation-harness"
	statereducer "push-lifecycle/internal/controller/state-reducer"
	"push-lifecycle/internal/models"
	"push-lifecycle/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// loadChannels reads the channel registry file when configured and falls
// back to the built-in pair otherwise.
func loadChannels(cfg config.PresentationConfig) (*registry.ChannelRegistry, error) {
	reg := registry.Default(cfg.DefaultChannelID, cfg.CallChannelID)
	if cfg.ChannelRegistryPath != "" {
		loaded, err := registry.LoadRegistry(cfg.ChannelRegistryPath)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}
	if err := reg.Validate(cfg.DefaultChannelID, cfg.CallChannelID); err != nil {
		return nil, err
	}
	return reg, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lifecycle controller...",
		zap.String("platform", cfg.Presentation.Platform),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, observability.Options{
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
	})
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Collaborators ---
	push, err := redispush.NewService(rdb.Client, redispush.LoadConfig(cfg.Push), log)
	if err != nil {
		zapLog.Fatal("push service init failed", zap.Error(err))
	}

	nativeAvailable := cfg.Presentation.NativeModuleAvailable()

	// An interface holding a typed nil pointer is not nil, so the native
	// module is only assigned when it exists.
	var native models.NativeModule
	if nativeAvailable {
		channels, err := loadChannels(cfg.Presentation)
		if err != nil {
			zapLog.Fatal("channel registry invalid", zap.Error(err))
		}
		native = consolenative.NewModule(channels, cfg.Presentation.DeepLinkScheme, log)
	}

	view := logview.NewView(log)

	// --- Controller ---
	reducer := statereducer.NewReducer(statereducer.LoadConfig(
		nativeAvailable,
		cfg.Presentation.DefaultChannelID,
		cfg.Presentation.CallChannelID,
	))

	controller := lifecycle.New(models.NewAppState(), lifecycle.Config{
		RequiresChannels: cfg.Presentation.RequiresChannels(),
		SubmitTimeout:    config.GetDuration(cfg.Push.RequestTimeout),
	}, lifecycle.Deps{
		Push:          push,
		Native:        native,
		View:          view,
		Logger:        log,
		Observability: obs,
		Reducer:       reducer,
		TokenTimeout:  config.GetDuration(cfg.Push.RequestTimeout),
	})

	harness := simulationharness.NewHarness(simulationharness.Config{
		Platform:              cfg.Presentation.Platform,
		NativeModuleAvailable: nativeAvailable,
	}, controller, log)

	runErr := make(chan error, 1)
	go func() {
		runErr <- controller.Run(ctx)
	}()

	// --- Control Surface ---
	gin.SetMode(cfg.API.Mode)
	server := &http.Server{
		Addr:              cfg.API.Address,
		Handler:           api.NewRouter(api.NewHandler(controller, harness, rdb, log), cfg.Metrics.Enabled),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.API.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping controller...")
	case err := <-runErr:
		zapLog.Error("Controller exited", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping API server", zap.Error(err))
	}

	controller.Stop()

	zapLog.Info("Lifecycle controller stopped gracefully")
}
