package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/studyhub/internal/app/controllers"
	appMigrations "github.com/yigit/studyhub/internal/app/migrations"
	appRepos "github.com/yigit/studyhub/internal/app/repositories"
	appRoutes "github.com/yigit/studyhub/internal/app/routes"
	appServices "github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/config"
	"github.com/yigit/studyhub/internal/db"
	appMiddleware "github.com/yigit/studyhub/internal/middleware"
	pkgAuth "github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/helpers"
	"github.com/yigit/studyhub/internal/pkg/logger"
	"github.com/yigit/studyhub/internal/recordstore"
	"github.com/yigit/studyhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Logger         zerolog.Logger
}

// Storage is the backend chosen at startup
type Storage struct {
	Repos *appRepos.Repositories
	DB    *db.PostgresDB
	Store *recordstore.Store
}

// Close releases the database pool, if any
func (s *Storage) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

// ConfigPath returns CONFIG_PATH, or configs/config.yaml when unset
func ConfigPath() string {
	return config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// The closer releases the log file.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, nil, err
	}

	logLevel := logger.ParseLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	loggerConfig := logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	}
	if cfg.Logging.File != "" {
		loggerConfig.File = &logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	closer := logger.Configure(loggerConfig)

	lgr := log.Logger
	lgr.Info().
		Str("logLevel", string(logLevel)).
		Str("logFormat", cfg.Logging.Format).
		Str("logFile", cfg.Logging.File).
		Msg("Logger configured")
	return cfg, lgr, closer, nil
}

// SetupStorage opens the configured backend. With backend auto a failed
// PostgreSQL connection falls back to the local record store.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendLocal:
		return setupLocalStorage(cfg, lgr)
	case config.BackendPostgres:
		return setupPostgresStorage(ctx, cfg, lgr)
	default:
		storage, err := setupPostgresStorage(ctx, cfg, lgr)
		if err == nil {
			return storage, nil
		}
		lgr.Warn().Err(err).Str("dataDir", cfg.Storage.DataDir).Msg("PostgreSQL unavailable, falling back to the local record store")
		return setupLocalStorage(cfg, lgr)
	}
}

func setupPostgresStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	lgr.Info().Str("host", cfg.Database.Host).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg, lgr)
	if err != nil {
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return &Storage{
		Repos: appRepos.NewPostgresRepositories(database),
		DB:    database,
	}, nil
}

func setupLocalStorage(cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	store, err := recordstore.Open(cfg.Storage.DataDir, recordstore.WithLogger(lgr.With().Str("component", "recordstore").Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	if corrupt := store.CorruptFiles(); len(corrupt) > 0 {
		lgr.Warn().Strs("files", corrupt).Msg("Some collections could not be loaded and start empty")
	}
	lgr.Info().Str("dataDir", store.Dir()).Msg("Using the local record store")
	return &Storage{
		Repos: appRepos.NewLocalRepositories(store),
		Store: store,
	}, nil
}

// SeedAdmin creates the configured administrator. Failures are returned but
// are not fatal for startup.
func SeedAdmin(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	account := seed.AdminAccount{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	}
	if err := seed.EnsureAdmin(ctx, repos.UserRepository, account, lgr); err != nil {
		return errors.Join(errors.New("failed to create default admin"), err)
	}
	return nil
}

// NewJWTService builds the token service from the JWT section
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		ResetTokenExp:  helpers.ParseDuration(cfg.JWT.ResetTokenExpiration, 10*time.Minute),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services, middleware and controllers on top
// of the repositories.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Repos:      repos,
		JWTService: NewJWTService(cfg),
		Logger:     lgr,
	}
	deps.Services = appServices.NewServices(repos, deps.JWTService, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository, lgr.With().Str("component", "auth").Logger())

	controllerLogger := lgr.With().Str("component", "controller").Logger()
	deps.Controllers = &appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.AuthService, controllerLogger),
		Study:     appControllers.NewStudyController(deps.Services.StudyService, controllerLogger),
		Notice:    appControllers.NewNoticeController(deps.Services.NoticeService, controllerLogger),
		Community: appControllers.NewCommunityController(deps.Services.PostService, deps.Services.CommentService, controllerLogger),
		Health:    appControllers.NewHealthController(deps.Services.HealthService),
	}
	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
