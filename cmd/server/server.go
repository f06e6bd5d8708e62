package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/teamdesk/internal/config"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/handlers"
	"github.com/thereayou/teamdesk/internal/logger"
	"github.com/thereayou/teamdesk/internal/scheduler"
	"github.com/thereayou/teamdesk/internal/services"
	"github.com/thereayou/teamdesk/internal/websocket"
	"github.com/thereayou/teamdesk/pkg/auth"
	"github.com/thereayou/teamdesk/pkg/storage"
	"go.uber.org/zap"
)

const (
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

type Server struct {
	Config     *config.Config
	Log        *zap.Logger
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
	Scheduler  *scheduler.Scheduler
}

// NewServer собирает все зависимости; при ошибке конфигурации процесс завершается
func NewServer() *Server {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	s, err := build(cfg, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}
	return s
}

func build(cfg *config.Config, log *zap.Logger) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbConn, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)

	var uploader services.Uploader
	if cfg.Storage.Enabled() {
		minioUploader, err := storage.NewMinioUploader(ctx, storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		uploader = minioUploader
	} else {
		log.Warn("object storage is not configured, image messages are disabled")
	}

	hub := websocket.NewHub(log)

	authSvc := services.NewAuthService(dbConn, jwtMgr, rdb)
	chatSvc := services.NewChatService(dbConn, hub, uploader, log)
	presenceSvc := services.NewPresenceService(dbConn, hub, log)
	deadlineSvc := services.NewDeadlineService(dbConn, rdb, hub, log)
	projectSvc := services.NewProjectService(dbConn, deadlineSvc, log)
	statusSvc := services.NewStatusService(dbConn)
	noteSvc := services.NewNoteService(dbConn)
	notificationSvc := services.NewNotificationService(dbConn)
	memberSvc := services.NewMemberService(dbConn, log)
	departmentSvc := services.NewDepartmentService(dbConn)
	dashboardSvc := services.NewDashboardService(dbConn)

	hub.SetObserver(presenceSvc)
	if err := presenceSvc.ResetAll(ctx); err != nil {
		return nil, fmt.Errorf("reset presence: %w", err)
	}

	jobs := scheduler.New(log, jobTimeout)
	if err := jobs.Add(cfg.DeadlineCron, "deadline-check", deadlineSvc.CheckDeadlines); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	messageH := handlers.NewMessageHandler(chatSvc, hub)
	router := NewRouter(log, Handlers{
		Auth:       handlers.NewAuthHandler(authSvc),
		User:       handlers.NewUserHandler(authSvc, notificationSvc),
		Chat:       handlers.NewChatHandler(chatSvc, hub),
		Project:    handlers.NewProjectHandler(projectSvc, statusSvc),
		Note:       handlers.NewNoteHandler(noteSvc, projectSvc),
		Member:     handlers.NewMemberHandler(memberSvc),
		Department: handlers.NewDepartmentHandler(departmentSvc),
		Dashboard:  handlers.NewDashboardHandler(dashboardSvc),
		WebSocket:  handlers.NewWebSocketHandler(hub, messageH, cfg.ClientURL, log),
	}, jwtMgr, authSvc, cfg.RequestTimeout)

	s := &Server{
		Config:     cfg,
		Log:        log,
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		Scheduler:  jobs,
	}
	router.GET("/health", s.health)

	return s, nil
}

// health проверяет Postgres и Redis
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok", "redis": "ok"}
	code := http.StatusOK
	if err := s.DB.Ping(ctx); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Run запускает hub, планировщик и HTTP сервер; останавливается по SIGINT/SIGTERM
func (s *Server) Run() {
	go s.Hub.Run()
	s.Scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + s.Config.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.Log.Info("server starting", zap.String("port", s.Config.Port), zap.String("env", s.Config.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Fatal("server run error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Error("http shutdown", zap.Error(err))
	}
	s.Hub.Stop()
	s.Scheduler.Stop(ctx)

	if err := s.Redis.Close(); err != nil {
		s.Log.Warn("redis close", zap.Error(err))
	}
	if err := s.DB.Close(); err != nil {
		s.Log.Warn("database close", zap.Error(err))
	}
	_ = s.Log.Sync()
}
