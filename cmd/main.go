package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpctx "github.com/dtroode/sessionkeeper/internal/api/http/context"
	"github.com/dtroode/sessionkeeper/internal/api/http/router"
	httpServer "github.com/dtroode/sessionkeeper/internal/api/http/server"
	"github.com/dtroode/sessionkeeper/internal/config"
	"github.com/dtroode/sessionkeeper/internal/email"
	"github.com/dtroode/sessionkeeper/internal/hash"
	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
	"github.com/dtroode/sessionkeeper/internal/ratelimit"
	"github.com/dtroode/sessionkeeper/internal/repository/postgres"
	"github.com/dtroode/sessionkeeper/internal/server"
	"github.com/dtroode/sessionkeeper/internal/service"
	"github.com/dtroode/sessionkeeper/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewDeviceSessionRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	hasher := hash.NewBcrypt(cfg.Password.BcryptCost)
	emailSender := email.NewResendSender(cfg.Email.APIKey, cfg.Email.From)

	authService := service.NewAuth(userRepo, hasher, emailSender, cfg.Codes.ConfirmationTTL, cfg.Codes.RecoveryTTL, logger)
	sessionService := service.NewSession(userRepo, sessionRepo, tokenManager, hasher, cfg.Session.TTL, logger)
	ctxMgr := httpctx.NewManager()

	limiter := newRateLimiter(cfg, db)

	r := router.New(authService, sessionService, limiter, ctxMgr, cfg.Session.TTL, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newRateLimiter(cfg *config.Config, db *postgres.Connection) model.RateLimiter {
	if cfg.RateLimit.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return ratelimit.NewRedisLimiter(client, cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window)
	}

	limitRepo := postgres.NewRateLimitRepository(db)
	return ratelimit.NewStoreLimiter(limitRepo, cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
