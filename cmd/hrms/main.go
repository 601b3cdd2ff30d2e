package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrms/internal/authz"
	"hrms/internal/config"
	"hrms/internal/dto"
	"hrms/internal/mail"
	"hrms/internal/observability/logging"
	"hrms/internal/observability/metrics"
	"hrms/internal/service"
	impl "hrms/internal/service/impl"
	"hrms/internal/store"
	transport "hrms/internal/transport/http"
	"hrms/pkg/db"
)

const serviceName = "hrms-auth"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister(serviceName)

	logger.Info("starting service")

	// 1) DB
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 15*time.Second)
	gdb, err := db.OpenGorm(openCtx, db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.DBLogSQL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	cancelOpen()
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := st.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Error("migrate", "error", err)
			os.Exit(1)
		}
	}

	// 2) Services
	pw := impl.NewPasswordServiceBcrypt(cfg.BcryptCost)
	creds := impl.NewCredentialService(st.Users(), pw, impl.CredentialPolicy{
		MaxLoginAttempts: cfg.MaxLoginAttempts,
		LockDuration:     cfg.AccountLockDuration,
		PasswordExpiry:   cfg.PasswordExpiry(),
		MfaOtpTTL:        cfg.MFAOtpTTL,
	})
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.JWTSecret),
	})
	if err != nil {
		logger.Error("token service", "error", err)
		os.Exit(1)
	}
	mfa := impl.NewMFAServiceTOTP(cfg.JWTIssuer)

	var email service.EmailService
	if cfg.MailgunEnabled() {
		email = mail.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase, cfg.MailFrom)
	} else {
		logger.Warn("MAILGUN_API_KEY not set, emails are logged instead of sent")
		email = mail.NewLogMailer(cfg.MailFrom, logger)
	}

	as := impl.NewAuthServiceImpl(st, creds, ts, mfa, email, impl.AuthConfig{
		FrontendURL:      cfg.FrontendURL,
		ExposeResetToken: !cfg.IsProduction(),
		Policy: impl.PasswordPolicy{
			MinLength:      cfg.PasswordMinLength,
			RequireUpper:   cfg.PasswordRequireUpper,
			RequireLower:   cfg.PasswordRequireLower,
			RequireNumber:  cfg.PasswordRequireNumber,
			RequireSpecial: cfg.PasswordRequireSpecial,
		},
	})

	if cfg.BootstrapAdminEnabled() {
		created, err := as.Bootstrap(context.Background(), dto.RegisterRequest{
			Username: cfg.BootstrapAdminUsername,
			Email:    cfg.BootstrapAdminEmail,
			Password: cfg.BootstrapAdminPassword,
		})
		if err != nil {
			logger.Error("bootstrap admin", "error", err)
			os.Exit(1)
		}
		logger.Info("bootstrap admin checked", "username", cfg.BootstrapAdminUsername, "created", created)
	}

	// 3) HTTP
	rs := transport.Responder{Production: cfg.IsProduction()}
	guard := authz.NewGuard(authz.GuardConfig{
		Tokens:      ts,
		Users:       st.Users(),
		Credentials: creds,
		MFA:         mfa,
		MFAEnabled:  cfg.MFAEnabled,
		WriteError:  rs.Error,
	})
	router := transport.NewRouter(transport.RouterConfig{
		APIPrefix:        cfg.APIPrefix,
		CORSOrigins:      cfg.CORSOrigins,
		RateLimitWindow:  cfg.RateLimitWindow,
		RateLimitMax:     cfg.RateLimitMaxRequests,
		AuthRateLimitMax: cfg.AuthRateLimitMax,
	}, transport.NewHandler(as, rs), guard, rs)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("hrms auth listening", "addr", srv.Addr, "api_prefix", cfg.APIPrefix, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", "error", err)
	}
	logger.Info("stopped")
}
