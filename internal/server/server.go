package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/metrics"
	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service"
	"github.com/ifuryst/reelcheck/internal/service/airtable"
	"github.com/ifuryst/reelcheck/internal/service/audit"
	"github.com/ifuryst/reelcheck/internal/service/review"
)

// AuditHistory reads finished and running audit runs back from the local
// history database.
type AuditHistory interface {
	RecentRuns(ctx context.Context, campaignID string, limit int) ([]models.AuditRun, error)
}

// Services are the collaborators the HTTP layer dispatches to.
type Services struct {
	Review   *service.ReviewService
	Outreach *service.OutreachService
	Audits   *audit.Trigger
	Probe    *service.StoreProbe
	// Auth is nil when dashboard auth is disabled.
	Auth *service.AuthService
	// History is nil when the history database is disabled.
	History AuditHistory
	// StoreConfigured is false when the record store has no credentials.
	StoreConfigured bool
}

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	Services
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.Server.Mode)

	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	srv := New(cfg, NewServices(cfg, db, logger), logger)
	srv.DB = db
	return srv, nil
}

// NewServices wires the record store, the local history database (nil when
// disabled) and the optional integrations into the dashboard services.
func NewServices(cfg *config.Config, db *gorm.DB, logger *zap.Logger) Services {
	client := airtable.NewClient(&cfg.Airtable, logger)
	if !client.Configured() {
		logger.Warn("Airtable credentials missing, record store calls will fail")
	}

	tables := review.Tables{
		Influencers: client.Table(cfg.Airtable.Tables.Influencers),
		Posts:       client.Table(cfg.Airtable.Tables.Posts),
		Errors:      client.Table(cfg.Airtable.Tables.Errors),
		Campaigns:   client.Table(cfg.Airtable.Tables.Campaigns),
	}
	reviewService := service.NewReviewService(tables, &cfg.Review, logger)

	var (
		outreachRepo service.OutreachRepository
		auditHistory AuditHistory
		auditOpts    []audit.Option
	)
	if db != nil {
		history := service.NewHistoryStore(db)
		outreachRepo = history
		auditHistory = history
		auditOpts = append(auditOpts, audit.WithRecorder(history))
	}
	if cfg.Slack.Token != "" && cfg.Slack.Channel != "" {
		auditOpts = append(auditOpts, audit.WithNotifier(service.NewSlackNotifier(&cfg.Slack, logger)))
	}

	svcs := Services{
		Review:          reviewService,
		Outreach:        service.NewOutreachService(outreachRepo, &cfg.Outreach, logger),
		Audits:          audit.NewTrigger(&cfg.Audit, audit.NewRegistry(), reviewService.Resolver(), logger, auditOpts...),
		Probe:           service.NewStoreProbe(&cfg.Probe, logger, tables.Influencers),
		History:         auditHistory,
		StoreConfigured: client.Configured(),
	}
	if cfg.Auth.Enabled {
		svcs.Auth = service.NewAuthService(&cfg.Auth, logger)
	}
	return svcs
}

// New builds the HTTP layer over already constructed services.
func New(cfg *config.Config, svcs Services, logger *zap.Logger) *Server {
	srv := &Server{
		Config:   cfg,
		Router:   gin.New(),
		Logger:   logger,
		Services: svcs,
	}

	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization")
	if len(s.Config.Server.AllowOrigins) == 0 || s.Config.Server.AllowOrigins[0] == "*" {
		corsConfig.AllowCredentials = false
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.Config.Server.AllowOrigins
	}
	s.Router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", s.handleHealth)

	if s.Config.Metrics.Enabled {
		s.Router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := s.Router.Group("/api/v1")
	if s.Auth != nil {
		api.Use(s.Auth.AuthMiddleware())
	}
	{
		api.POST("/auth/login", s.handleLogin)

		api.GET("/campaigns", s.handleListCampaigns)
		api.GET("/summary", s.handleSummary)
		api.GET("/review", s.handleReview)

		posts := api.Group("/posts")
		{
			posts.POST("/flag", s.handleSaveFlag)
			posts.POST("/rating", s.handleSaveRating)
			posts.POST("/reviewed", s.handleMarkReviewed)
			posts.POST("/approval", s.handleApprovePost)
			posts.POST("/comment", s.handleSaveComment)
		}

		messages := api.Group("/messages")
		{
			messages.POST("/send", s.handleSendMessage)
			messages.POST("/log", s.handleLogMessage)
		}

		audits := api.Group("/audits")
		{
			audits.POST("", s.handleStartAudit)
			audits.GET("", s.handleAuditStatus)
			audits.GET("/history", s.handleAuditHistory)
		}
	}
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.Probe.Start(ctx); err != nil {
		return fmt.Errorf("failed to start record store probe: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	var err error
	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		err = s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	} else {
		err = s.Server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the probe, drains HTTP requests and then cancels any audit
// still cooling down.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Probe.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var errs []error
	if s.Server != nil {
		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown http server: %w", err))
		}
	}
	if err := s.Audits.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop audits: %w", err))
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return errors.Join(errs...)
}
