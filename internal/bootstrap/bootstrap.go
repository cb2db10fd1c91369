package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/attendly/attendly/internal/app/auth"
	appControllers "github.com/attendly/attendly/internal/app/controllers"
	appMigrations "github.com/attendly/attendly/internal/app/migrations"
	"github.com/attendly/attendly/internal/app/models/dto"
	appRepos "github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/app/repositories/memory"
	appRoutes "github.com/attendly/attendly/internal/app/routes"
	appServices "github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/config"
	"github.com/attendly/attendly/internal/db"
	appMiddleware "github.com/attendly/attendly/internal/middleware"
	pkgAuth "github.com/attendly/attendly/internal/pkg/auth"
	"github.com/attendly/attendly/internal/pkg/helpers"
	"github.com/attendly/attendly/internal/pkg/logger"
	"github.com/attendly/attendly/internal/pkg/metrics"
	"github.com/attendly/attendly/internal/pkg/validation"
	"github.com/attendly/attendly/internal/pkg/websocket"
	"github.com/attendly/attendly/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Pool           *pgxpool.Pool // nil with the memory driver
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Metrics        *metrics.Metrics
	Hub            *websocket.Hub
	Version        string
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "attendly",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured store. For PostgreSQL it connects, pings and
// applies the migrations; the returned pool must be closed by the caller.
func SetupStorage(cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *pgxpool.Pool, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage, data is lost on restart")
		return memory.NewRepositories(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return appRepos.NewRepositories(dbPool), dbPool, nil
}

// SeedDefaultData creates the admin account and the optional demo data. Failures
// are logged and do not stop the startup.
func SeedDefaultData(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := seed.Options{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
		DemoData:      cfg.Seed.DemoData,
	}
	if err := seed.CreateDefaultData(ctx, repos, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// BuildDependencies initializes services, controllers and middleware on top of the store.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, dbPool *pgxpool.Pool, version string, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Repos:   repos,
		Pool:    dbPool,
		Version: version,
		Logger:  lgr,
	}

	validation.RegisterRules()

	deps.Metrics = metrics.New()
	deps.Hub = websocket.NewHub(lgr, cfg.Server.AllowedOrigins)
	deps.Hub.OnConnectionsChanged(deps.Metrics.SetFeedConnections)

	deps.AuthzService = appAuth.NewAuthorizationService(repos)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	threshold := cfg.Attendance.DefaulterThreshold
	runtime := appServices.RuntimeInfo{
		Version:   version,
		Driver:    cfg.Database.Driver,
		StartedAt: time.Now(),
		Feed:      deps.Hub,
	}
	if dbPool != nil {
		runtime.PoolStats = func() *dto.PoolStats {
			stat := dbPool.Stat()
			return &dto.PoolStats{
				TotalConns:    stat.TotalConns(),
				IdleConns:     stat.IdleConns(),
				AcquiredConns: stat.AcquiredConns(),
				MaxConns:      stat.MaxConns(),
			}
		}
	}

	authz := deps.AuthzService
	deps.Services = &appServices.Services{
		Auth:        appServices.NewAuthService(repos.Users, deps.JWTService, lgr),
		Users:       appServices.NewUserService(repos, authz, lgr),
		Departments: appServices.NewDepartmentService(repos, authz, lgr),
		Hierarchy:   appServices.NewHierarchyService(repos, authz, lgr),
		Subjects:    appServices.NewSubjectService(repos, authz, lgr),
		Students:    appServices.NewStudentService(repos, authz, lgr),
		Allocations: appServices.NewAllocationService(repos, authz, lgr),
		Lectures:    appServices.NewLectureService(repos, authz, deps.Hub, deps.Metrics, lgr),
		Reports:     appServices.NewReportService(repos, authz, threshold, lgr),
		Dashboards:  appServices.NewDashboardService(repos, authz, threshold, runtime, lgr),
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.Users)

	svc := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(svc.Auth, lgr),
		Users:       appControllers.NewUserController(svc.Users),
		Departments: appControllers.NewDepartmentController(svc.Departments, svc.Hierarchy),
		Hierarchy:   appControllers.NewHierarchyController(svc.Hierarchy),
		Subjects:    appControllers.NewSubjectController(svc.Subjects),
		Students:    appControllers.NewStudentController(svc.Students, svc.Reports),
		Allocations: appControllers.NewAllocationController(svc.Allocations),
		Lectures:    appControllers.NewLectureController(svc.Lectures),
		Reports:     appControllers.NewReportController(svc.Reports, lgr),
		Dashboards:  appControllers.NewDashboardController(svc.Dashboards),
		Feed:        appControllers.NewFeedController(deps.Hub, authz, svc.Departments, lgr),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(deps.Metrics),
		cors.New(corsConfig(cfg.Server.AllowedOrigins)),
	)

	appRoutes.SetupSwagger(router, "")
	appRoutes.SetupHealth(router, deps.Version)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders:    []string{appMiddleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
