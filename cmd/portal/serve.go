package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"enterprise-portal/internal/auth"
	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/config"
	"enterprise-portal/internal/httpapi"
	"enterprise-portal/internal/logging"
	"enterprise-portal/internal/powerbi"
	"enterprise-portal/internal/session"
	"enterprise-portal/internal/store"
	"enterprise-portal/internal/store/memory"
	"enterprise-portal/internal/store/postgres"
	redisstore "enterprise-portal/internal/store/redis"
	"enterprise-portal/internal/telemetry"
	"enterprise-portal/internal/view"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	serviceName   = "enterprise-portal"
	sweepInterval = 5 * time.Minute
)

func newServeCmd() *cobra.Command {
	var port, storeKind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("store") {
				cfg.Store = storeKind
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8080", "listen port (overrides PORTAL_PORT)")
	cmd.Flags().StringVar(&storeKind, "store", config.StoreMemory, "storage backend: memory, postgres or redis (overrides PORTAL_STORE)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTelemetry := telemetry.Setup(serviceName, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	slot, closeSlot, err := openSlot(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSlot()

	accounts, demo, err := loadAccounts(cfg)
	if err != nil {
		return err
	}
	validator, err := auth.NewValidator(accounts)
	if err != nil {
		return err
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("PORTAL_SESSION_SECRET not set, sessions will not survive a restart")
	}
	tokens, err := session.NewTokens(secret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	menu := catalogue.NewStore(slot, catalogue.WithLogger(logger.Named("catalogue")))
	exchanger := powerbi.NewExchanger(powerbi.Config{
		AuthorityURL: cfg.PowerBIAuthority,
		APIURL:       cfg.PowerBIAPI,
		Timeout:      cfg.PowerBITimeout,
		Logger:       logger.Named("powerbi"),
	})
	sessions := session.NewManager(session.Deps{
		Slot:       slot,
		Validator:  validator,
		Catalogue:  menu,
		LoginDelay: cfg.LoginDelay,
		Logger:     logger.Named("session"),
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	handler := httpapi.NewHandler(httpapi.Options{
		Sessions:        sessions,
		Tokens:          tokens,
		Catalogue:       menu,
		Exchanger:       exchanger,
		Renderer:        view.BrowserRenderer{SDKURL: view.PowerBISDKURL},
		Metrics:         httpapi.NewMetrics(),
		RateLimiter:     limiter,
		Logger:          logger.Named("http"),
		CookieSecure:    cfg.CookieSecure,
		CORSOrigins:     cfg.CORSOrigins,
		DemoCredentials: demo,
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     otelhttp.NewHandler(handler.Routes(), serviceName),
		ReadTimeout: 10 * time.Second,
		// The embed exchange may take up to the outbound timeout.
		WriteTimeout: cfg.PowerBITimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go sweep(ctx, limiter, sessions, cfg.SessionTTL, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal listening", zap.String("addr", server.Addr), zap.String("store", cfg.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	return nil
}

func openSlot(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DB_DSN is required for the postgres store")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if err := postgres.Migrate(pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewStore(pool), pool.Close, nil
	case config.StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, errors.New("REDIS_ADDR is required for the redis store")
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return redisstore.NewStore(client, serviceName, redisstore.WithExpiry(session.KeyPrefix+":", cfg.SessionTTL)), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// loadAccounts returns the users file table, or the demo table together with
// the credentials to show on the login page.
func loadAccounts(cfg config.Config) ([]auth.Account, []auth.DemoCredential, error) {
	if cfg.UsersFile != "" {
		accounts, err := auth.LoadAccounts(cfg.UsersFile)
		return accounts, nil, err
	}
	accounts, err := auth.DemoAccounts(bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	return accounts, auth.DemoCredentials(), nil
}

func sweep(ctx context.Context, limiter *httpapi.RateLimiter, sessions *session.Manager, sessionTTL time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep(10 * time.Minute)
			if removed := sessions.Sweep(sessionTTL); removed > 0 {
				logger.Debug("evicted idle sessions", zap.Int("count", removed))
			}
			pruned, err := sessions.PruneRecords(ctx, sessionTTL)
			if err != nil {
				logger.Warn("prune session records", zap.Error(err))
			} else if pruned > 0 {
				logger.Info("pruned expired session records", zap.Int("count", pruned))
			}
		}
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
