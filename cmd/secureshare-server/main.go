package main

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/config"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/audit"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/consent"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/customer"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/disclosure"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/partner"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/auth"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/db"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/middleware"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/notify"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "secureshare-server",
		Short: "Consent-gated customer data sharing API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(keygenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	var migrationsDir string
	cmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir)
			applied, err := migrator.Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = fmt.Sprintf("applied %s", s.AppliedAt.Format(time.RFC3339))
				}
				fmt.Printf("%04d  %-40s  %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

// keygenCmd prints a fresh 32-byte field-encryption key as hex, suitable
// for FIELD_ENCRYPTION_KEY.
func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a field-encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := make([]byte, 32)
			if _, err := cryptorand.Read(key); err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			fmt.Println(hex.EncodeToString(key))
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// The audit signing key survives restarts so the chain stays
	// verifiable across process lifetimes.
	signer, err := crypto.LoadOrCreateSigner(cfg.SigningKeyFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load signing key")
	}

	fieldKey, err := cfg.FieldKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid field encryption key")
	}
	fieldEnc, err := crypto.NewFieldEncryptor(fieldKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create field encryptor")
	}

	// Services
	auditSvc := audit.NewService(audit.NewRepoPG(pool), signer, logger)
	customerSvc := customer.NewService(customer.NewRepoPG(pool), fieldEnc, auditSvc)
	partnerSvc := partner.NewService(partner.NewRepoPG(pool), auditSvc)
	consentSvc := consent.NewService(
		consent.NewRepoPG(pool),
		&customerDirectory{customers: customerSvc},
		&partnerDirectory{partners: partnerSvc},
		auditSvc,
		cfg.MinConsentDuration(),
	)

	deliveries := notify.NewDeliveryStore(256)
	notifier := notify.NewNotifier(
		time.Duration(cfg.WebhookTimeout)*time.Second,
		signer,
		deliveries,
		logger,
	)

	disclosureSvc := disclosure.NewService(
		disclosure.NewRepoPG(pool),
		consentSvc,
		customerSvc,
		&partnerDirectory{partners: partnerSvc},
		auditSvc,
		notifier,
		logger,
	)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.AccessLog(logger))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Bank-side API: JWT-authenticated admins, auditors, and customers.
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set, using development auth")
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	// Partner-side API: authenticated by per-partner API key.
	partnerV1 := e.Group("/partner/v1")
	partnerV1.Use(middleware.RateLimit(rateLimitCfg))
	partnerV1.Use(auth.APIKeyMiddleware(partnerSvc))

	customer.NewHandler(customerSvc).RegisterRoutes(apiV1)
	partner.NewHandler(partnerSvc).RegisterRoutes(apiV1, partnerV1)
	consent.NewHandler(consentSvc).RegisterRoutes(apiV1)
	disclosure.NewHandler(disclosureSvc).RegisterRoutes(apiV1, partnerV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// customerDirectory adapts the customer service to the narrow existence
// check the consent engine needs.
type customerDirectory struct {
	customers *customer.Service
}

func (d *customerDirectory) CustomerExists(ctx context.Context, id uuid.UUID) error {
	_, err := d.customers.GetCustomer(ctx, id)
	return err
}

// partnerDirectory adapts the partner service to the snapshot lookups the
// consent and disclosure services consume.
type partnerDirectory struct {
	partners *partner.Service
}

func (d *partnerDirectory) PartnerInfo(ctx context.Context, id uuid.UUID) (*consent.PartnerInfo, error) {
	p, err := d.partners.GetPartner(ctx, id)
	if err != nil {
		return nil, err
	}

	info := &consent.PartnerInfo{
		ID:           p.ID,
		Name:         p.Name,
		Status:       p.Status,
		Active:       p.Status == partner.StatusActive,
		PublicKeyPEM: p.PublicKeyPEM,
		CallbackURL:  p.CallbackURL,
	}
	if p.ApprovedContract != nil {
		info.HasApprovedContract = true
		info.ContractID = p.ApprovedContract.ContractID
		info.AllowedFields = p.ApprovedContract.AllowedFields
		info.Purpose = p.ApprovedContract.Purpose
		info.RetentionPeriodDays = p.ApprovedContract.RetentionPeriodDays
	}
	return info, nil
}
