package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/parsa-dv/messenger/internal/config"
	"github.com/parsa-dv/messenger/internal/filestore"
	"github.com/parsa-dv/messenger/internal/handler"
	"github.com/parsa-dv/messenger/internal/job"
	"github.com/parsa-dv/messenger/internal/middleware"
	"github.com/parsa-dv/messenger/internal/presence"
	"github.com/parsa-dv/messenger/internal/repo"
	"github.com/parsa-dv/messenger/internal/schedule"
	"github.com/parsa-dv/messenger/internal/service"
	"github.com/parsa-dv/messenger/internal/token"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "messenger",
		Short: "messenger backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run messenger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("file_store", cfg.FileStore.Type),
		zap.Bool("mail_degraded_mode", cfg.Mail.DegradedMode),
	)

	db, err := repo.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := repo.ApplyMigrations(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	userRepo := repo.NewUserRepo(db)
	messageRepo := repo.NewMessageRepo(db)

	tokenService := token.NewService(token.NewMemoryStore())
	tracker := presence.NewTracker()
	mailSender := service.NewEmailSender(cfg.Mail)

	jwtSecret := []byte(cfg.JWTSecret)
	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(userRepo, tokenService, mailSender, jwtSecret, jwtTTL, cfg.Mail.DegradedMode)
	messageService := service.NewMessageService(messageRepo, userRepo, tracker)
	contactService := service.NewContactService(userRepo, messageRepo, tracker)
	userService := service.NewUserService(userRepo)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	uploadService := service.NewUploadService(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewScheduler()
	if err := scheduler.AddJob(job.NewTokenSweepJob(tokenService), "*/5 * * * *"); err != nil {
		return fmt.Errorf("schedule token sweep: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(cfg.CORSOrigins))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	handler.RegisterRoutes(engine, handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authService),
		Messages:    handler.NewMessageHandler(messageService, uploadService),
		Users:       handler.NewUserHandler(userService, contactService, uploadService),
		Presence:    handler.NewPresenceHandler(tracker),
		Files:       handler.NewFileHandler(store),
		JWTSecret:   jwtSecret,
		IssueWindow: 10 * time.Second,
	})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: engine}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
