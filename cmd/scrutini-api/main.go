package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/giua-dev/scrutini-api/api/swagger"
	"github.com/giua-dev/scrutini-api/internal/handler"
	"github.com/giua-dev/scrutini-api/internal/middleware"
	"github.com/giua-dev/scrutini-api/internal/repository"
	"github.com/giua-dev/scrutini-api/internal/service"
	"github.com/giua-dev/scrutini-api/pkg/cache"
	"github.com/giua-dev/scrutini-api/pkg/config"
	"github.com/giua-dev/scrutini-api/pkg/database"
	"github.com/giua-dev/scrutini-api/pkg/logger"
	corsmiddleware "github.com/giua-dev/scrutini-api/pkg/middleware/cors"
	reqidmiddleware "github.com/giua-dev/scrutini-api/pkg/middleware/requestid"
)

// @title Scrutini API
// @version 1.0.0
// @description End-of-term grading session management
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Results.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Results.CacheTTL, logr, cfg.Results.CacheEnabled)

	definitionRepo := repository.NewDefinitionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	outcomeRepo := repository.NewOutcomeRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	gradeRepo := repository.NewSessionGradeRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	definitionSvc := service.NewDefinitionService(definitionRepo, logr)
	sessionSvc := service.NewSessionService(sessionRepo, classRepo, outcomeRepo, gradeRepo, cacheSvc, cfg.Results.CacheTTL, logr)
	gradeSvc := service.NewGradeService(proposalRepo, gradeRepo, subjectRepo, sessionRepo, cacheSvc, logr)
	outcomeSvc := service.NewOutcomeService(outcomeRepo, studentRepo, sessionRepo, cacheSvc, logr)
	archiveSvc := service.NewArchiveService(archiveRepo, outcomeRepo, gradeRepo, sessionRepo, studentRepo, classRepo, logr)
	exportSvc := service.NewExportService(sessionRepo, outcomeRepo, gradeRepo, studentRepo, subjectRepo, classRepo, cfg.Exports.Enabled, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Definition: handler.NewDefinitionHandler(definitionSvc),
		Session:    handler.NewSessionHandler(sessionSvc, exportSvc),
		Grade:      handler.NewGradeHandler(gradeSvc),
		Outcome:    handler.NewOutcomeHandler(outcomeSvc),
		Archive:    handler.NewArchiveHandler(archiveSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
