package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/config"
	"github.com/yoockh/yoointerview/internal/agents/coach"
	"github.com/yoockh/yoointerview/internal/agents/interviewer"
	"github.com/yoockh/yoointerview/internal/api/handlers"
	"github.com/yoockh/yoointerview/internal/api/middleware"
	"github.com/yoockh/yoointerview/internal/api/routes"
	"github.com/yoockh/yoointerview/internal/cache"
	"github.com/yoockh/yoointerview/internal/lock"
	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/providers/llm"
	"github.com/yoockh/yoointerview/internal/providers/search"
	mongorepo "github.com/yoockh/yoointerview/internal/repositories/mongo"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/storage"
	"github.com/yoockh/yoointerview/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	if err := run(log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(log *logrus.Logger) error {
	app, err := config.LoadApp()
	if err != nil {
		return err
	}
	log.SetLevel(logger.ParseLevel(app.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.InitMongo(); err != nil {
		return fmt.Errorf("mongo init: %w", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	log.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		return fmt.Errorf("postgres init: %w", err)
	}
	if err := config.MigratePostgres(); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		return fmt.Errorf("redis init: %w", err)
	}
	log.Info("Redis connected")

	model, err := llm.New(ctx, llm.Config{
		Provider:       app.LLMProvider,
		VertexProject:  app.VertexProject,
		VertexLocation: app.VertexLocation,
		VertexModel:    app.VertexModel,
		OpenAIKey:      app.OpenAIAPIKey,
		OpenAIBaseURL:  app.OpenAIBaseURL,
		OpenAIModel:    app.OpenAIModel,
		RequestTimeout: app.LLMTimeout,
		MaxAttempts:    app.LLMMaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("llm init: %w", err)
	}
	defer model.Close()

	bank, err := interviewer.LoadBank(app.QuestionBankPath)
	if err != nil {
		return err
	}

	sessions := mongorepo.NewSessionRepo(config.MongoDatabase())
	reports := pgrepo.NewReportRepo(config.PostgresDB)
	profiles := services.NewProfileService(pgrepo.NewProfileRepo(config.PostgresDB))

	var enricher search.Enricher
	if app.SearchEnabled() {
		g, err := search.NewGoogle(ctx, app.SearchAPIKey, app.SearchCX)
		if err != nil {
			return err
		}
		rc := cache.NewRedisCache(config.RedisClient, app.RedisKeyPrefix)
		enricher = search.NewEnricher(search.WithCache(g, rc, app.SearchCacheTTL, log))
	} else {
		log.Warn("SEARCH_API_KEY/SEARCH_CX not set, coaching summaries will have no resources")
	}

	var (
		uploader storage.Uploader
		signer   storage.Signer
	)
	if app.ReportBucket != "" {
		gcs, err := storage.NewGCS(ctx, app.ReportBucket)
		if err != nil {
			return fmt.Errorf("gcs init: %w", err)
		}
		defer gcs.Close()
		uploader, signer = gcs, gcs
	}

	reportSvc := services.NewReportService(sessions, reports, uploader, log)
	sessionSvc := services.NewSessionService(services.SessionDeps{
		Sessions:    sessions,
		Locker:      lock.NewRedis(config.RedisClient, app.RedisKeyPrefix, app.LockTTL, log),
		Interviewer: interviewer.New(model, bank, log),
		Coach:       coach.New(model, log),
		Resources:   enricher,
		Resumes:     profiles,
		Reports:     &workers.ReportPublisher{Redis: config.RedisClient},
		Logger:      log,
		Config: services.SessionConfig{
			AgentTimeout:   app.AgentTimeout,
			SummaryTimeout: app.SummaryTimeout,
			EnrichTimeout:  app.EnrichTimeout,
		},
	})

	pool := &workers.ReportWorkerPool{
		Redis:      config.RedisClient,
		Reports:    reportSvc,
		NumWorkers: app.ReportWorkers,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		return err
	}

	if strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, routes.Deps{
		Session: handlers.NewSessionHandler(sessionSvc),
		Profile: handlers.NewProfileHandler(profiles),
		Report:  handlers.NewReportHandler(reportSvc, signer, log),
		WS:      handlers.NewWSHandler(sessionSvc, strings.Split(os.Getenv("WS_ALLOWED_ORIGINS"), ",")),
	})

	srv := &http.Server{
		Addr:              ":" + app.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", app.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	_ = config.RedisClient.Close()
	return config.MongoClient.Disconnect(shutdownCtx)
}
