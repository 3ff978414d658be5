package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	appControllers "github.com/nsbs/certify/internal/app/controllers"
	appMigrations "github.com/nsbs/certify/internal/app/migrations"
	appRepos "github.com/nsbs/certify/internal/app/repositories"
	appRoutes "github.com/nsbs/certify/internal/app/routes"
	appServices "github.com/nsbs/certify/internal/app/services"
	"github.com/nsbs/certify/internal/config"
	"github.com/nsbs/certify/internal/db"
	appMiddleware "github.com/nsbs/certify/internal/middleware"
	pkgAuth "github.com/nsbs/certify/internal/pkg/auth"
	"github.com/nsbs/certify/internal/pkg/email"
	"github.com/nsbs/certify/internal/pkg/helpers"
	"github.com/nsbs/certify/internal/pkg/logger"
	"github.com/nsbs/certify/internal/pkg/validation"
	"github.com/nsbs/certify/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	ExamService           appServices.ExamService
	CertificateService    appServices.CertificateService
	NotificationService   appServices.NotificationService
	ExamController        *appControllers.ExamController
	CertificateController *appControllers.CertificateController
	HealthController      *appControllers.HealthController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	Mailer                email.Mailer
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env and configuration, then initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
		File: logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   true,
		},
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds courses.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	courses := appRepos.NewCourseRepository(database.Pool)
	if err := seed.SeedCourses(ctx, courses, cfg.Exam.CoursesFile, lgr); err != nil {
		// A bad entry in the seed file must not keep the service down
		lgr.Error().Err(err).Msg("Course seeding finished with errors, proceeding anyway...")
	}

	return database, nil
}

// ExamDefaultsFromConfig converts the exam section into service defaults
func ExamDefaultsFromConfig(cfg *config.Config) appServices.ExamDefaults {
	return appServices.ExamDefaults{
		PassingScore:    cfg.Exam.PassingScore,
		MaxAttempts:     cfg.Exam.MaxAttempts,
		Duration:        helpers.ParseDuration("exam duration", cfg.Exam.Duration, 0),
		SubmissionGrace: helpers.ParseDuration("exam submission grace", cfg.Exam.SubmissionGrace, 0),
		MaxTimeSpent:    cfg.Exam.MaxTimeSpent,
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey: cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
	})

	mailer, err := email.NewMailer(email.Config{
		Provider:     cfg.Email.Provider,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		ResendAPIKey: cfg.Email.ResendAPIKey,
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
		},
	}, lgr.With().Str("component", "mailer").Logger())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize mailer")
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	deps.Mailer = mailer

	verifyBaseURL := cfg.Certificate.VerifyBaseURL
	if verifyBaseURL == "" {
		verifyBaseURL = strings.TrimRight(cfg.Server.SiteURL, "/") + "/verify"
	}

	deps.NotificationService = appServices.NewNotificationService(
		deps.Repos.ProfileRepository,
		deps.Mailer,
		helpers.ParseDuration("email send timeout", cfg.Email.SendTimeout, 15*time.Second),
		verifyBaseURL,
		lgr.With().Str("component", "notifier").Logger(),
	)

	deps.CertificateService = appServices.NewCertificateService(
		deps.Repos.CertificateRepository,
		deps.Repos.VerificationRepository,
		cfg.Certificate.Prefix,
		lgr.With().Str("component", "certificates").Logger(),
	)

	deps.ExamService = appServices.NewExamService(
		deps.Repos.CourseRepository,
		deps.Repos.PurchaseRepository,
		deps.Repos.ExamAttemptRepository,
		deps.Repos.ExamStore,
		deps.CertificateService,
		deps.NotificationService,
		ExamDefaultsFromConfig(cfg),
		lgr.With().Str("component", "exams").Logger(),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.Auth.CookieName, cfg.Auth.AdminKeyHash)

	deps.ExamController = appControllers.NewExamController(deps.ExamService, cfg.Exam.MaxTimeSpent)
	deps.CertificateController = appControllers.NewCertificateController(deps.CertificateService)
	deps.HealthController = appControllers.NewHealthController(database.Pool)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes. The returned
// close func releases the rate limiter's store.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, func() error, error) {
	isProduction := strings.ToLower(cfg.Server.Mode) == "production"
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterGinRules(); err != nil {
		return nil, nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.SecureHeaders(!isProduction))

	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		return nil, nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	var rateLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	closeLimiter := func() error { return nil }
	if cfg.RateLimit.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		limiter, closeFn, err := appMiddleware.NewRateLimiter(ctx, appMiddleware.RateLimitConfig{
			Store:     cfg.RateLimit.Store,
			RedisAddr: cfg.RateLimit.RedisAddr,
			Requests:  uint(cfg.RateLimit.Requests),
			Window:    helpers.ParseDuration("rate limit window", cfg.RateLimit.Window, time.Minute),
		})
		if err != nil {
			return nil, nil, err
		}
		rateLimit, closeLimiter = limiter, closeFn
		lgr.Info().Str("store", cfg.RateLimit.Store).Int("requests", cfg.RateLimit.Requests).Str("window", cfg.RateLimit.Window).Msg("Rate limiting enabled")
	}

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.ExamController,
		deps.CertificateController,
		deps.HealthController,
		appRoutes.Middlewares{
			Auth:        deps.AuthMiddleware,
			OriginCheck: appMiddleware.OriginCheck(cfg.AllowedOriginList()),
			RateLimit:   rateLimit,
		},
	)

	return router, closeLimiter, nil
}
