// Command goguard-server runs the goGuard reference HTTP service.
//
// Configuration comes from goguard.yaml (or --config), an optional .env file
// and GOGUARD_* environment variables. See internal/config for keys.
//
//	goguard-server serve --config deploy/goguard.yaml
//	goguard-server gen-secrets >> .env
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/internal/config"
	"github.com/MrEthical07/goGuard/internal/logging"
	"github.com/MrEthical07/goGuard/internal/server"
	"github.com/MrEthical07/goGuard/jwt"
	promexport "github.com/MrEthical07/goGuard/metrics/export/prometheus"
	"github.com/MrEthical07/goGuard/password"
	"github.com/MrEthical07/goGuard/sinks/breaker"
	"github.com/MrEthical07/goGuard/sinks/kafkasink"
	"github.com/MrEthical07/goGuard/sinks/redisstream"
	"github.com/MrEthical07/goGuard/sinks/zaplog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configFile, dotenv string) error {
	cfg, err := config.Load(configFile, dotenv)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sink, closeSinks, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	guard, err := goGuard.New().
		WithConfig(cfg.GuardConfig()).
		WithLogger(logger).
		WithAuditSink(sink).
		Build()
	if err != nil {
		return fmt.Errorf("build guard: %w", err)
	}
	defer guard.Close()

	tokens, err := newTokenManager(cfg, logger)
	if err != nil {
		return err
	}

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		return err
	}
	dir, err := server.NewDirectory(hasher, password.DefaultPolicy())
	if err != nil {
		return err
	}

	srv := server.New(guard, tokens, dir, dir, server.Options{
		OperatorToken:  cfg.Server.OperatorToken,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsHandler: promexport.Handler(promexport.NewCollector(guard)),
	}, logger)
	if cfg.Server.OperatorToken == "" {
		logger.Warn("no operator token configured; /api/security endpoints will refuse every request")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := server.RunJanitor(gctx, guard, cfg.Server.CleanupInterval, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newTokenManager(cfg *config.Config, logger *zap.Logger) (*jwt.Manager, error) {
	secret := []byte(cfg.JWT.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		logger.Warn("jwt.secret not set; using an ephemeral key, tokens will not survive a restart")
	}
	return jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.TTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    secret,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
	})
}

// buildSinks fans audit events out to the log and to any configured
// external system. External sinks sit behind a circuit breaker.
func buildSinks(cfg *config.Config, logger *zap.Logger) (goGuard.AuditSink, func(), error) {
	var (
		sinks   goGuard.MultiSink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	breakerCfg := func(name string) breaker.Config {
		return breaker.Config{
			Name:        name,
			MaxFailures: cfg.Sinks.Breaker.MaxFailures,
			OpenTimeout: cfg.Sinks.Breaker.OpenTimeout,
		}
	}

	if cfg.Sinks.Log {
		sinks = append(sinks, zaplog.New(logger))
	}

	if addr := cfg.Sinks.Redis.Addr; addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		closers = append(closers, func() { _ = client.Close() })
		rs, err := redisstream.New(client, redisstream.Config{
			Stream:      cfg.Sinks.Redis.Stream,
			MaxLen:      cfg.Sinks.Redis.MaxLen,
			Approximate: true,
		}, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, breaker.New(rs, breakerCfg("redis-stream"), logger))
		logger.Info("audit events published to redis stream", zap.String("addr", addr), zap.String("stream", cfg.Sinks.Redis.Stream))
	}

	if len(cfg.Sinks.Kafka.Brokers) > 0 {
		ks, err := kafkasink.New(kafkasink.Config{
			Brokers: cfg.Sinks.Kafka.Brokers,
			Topic:   cfg.Sinks.Kafka.Topic,
		}, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = ks.Close() })
		sinks = append(sinks, breaker.New(ks, breakerCfg("kafka"), logger))
		logger.Info("audit events published to kafka", zap.Strings("brokers", cfg.Sinks.Kafka.Brokers), zap.String("topic", cfg.Sinks.Kafka.Topic))
	}

	if len(sinks) == 0 {
		return goGuard.NoOpSink{}, closeAll, nil
	}
	return sinks, closeAll, nil
}
