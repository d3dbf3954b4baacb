package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/project-task-api/internal/classifier"
	"github.com/yukikurage/project-task-api/internal/config"
	"github.com/yukikurage/project-task-api/internal/constants"
	"github.com/yukikurage/project-task-api/internal/database"
	"github.com/yukikurage/project-task-api/internal/handlers"
	"github.com/yukikurage/project-task-api/internal/logging"
	"github.com/yukikurage/project-task-api/internal/middleware"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/internal/services"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(v *viper.Viper) error {
				return v.BindPFlag("PORT", cmd.Flags().Lookup("port"))
			})
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("port", "8080", "port to listen on")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	router := newRouter(cfg, db, store, newClassifier(cfg))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	stop()
	logging.Logger.Info("Shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}

// newSessionStore returns the redis store used in deployments, or a signed
// cookie store when SESSION_STORE=cookie.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	case "redis", "":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// newClassifier picks the sentiment backend. Whatever is chosen, failures
// fall back to keyword matching inside the classifier.
func newClassifier(cfg *config.Config) *classifier.Classifier {
	var analyzer classifier.SentimentAnalyzer
	switch cfg.SentimentProvider {
	case "huggingface":
		analyzer = classifier.NewHuggingFaceAnalyzer(cfg.HuggingFaceURL, cfg.HuggingFaceToken, &http.Client{
			Timeout: cfg.ClassifierTimeout,
		})
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			analyzer = classifier.NewOpenAIAnalyzer(cfg.OpenAIAPIKey)
		} else {
			logging.Logger.Warn("OPENAI_API_KEY is empty, using keyword classification only")
		}
	case "none", "":
	default:
		logging.Logger.WithField("provider", cfg.SentimentProvider).Warn("Unknown sentiment provider, using keyword classification only")
	}

	return classifier.New(analyzer, classifier.WithTimeout(cfg.ClassifierTimeout))
}

func newRouter(cfg *config.Config, db *gorm.DB, sessionStore sessions.Store, priority services.PriorityClassifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AddAllowHeaders(middleware.RequestIDHeader)
	r.Use(cors.New(corsConfig))

	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	store := repository.NewStore(db)
	authService := services.NewAuthService(store.Users())

	h := &handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Users:    handlers.NewUserHandler(authService),
		Projects: handlers.NewProjectHandler(services.NewProjectService(store)),
		Tasks: handlers.NewTaskHandler(
			services.NewTaskService(store, priority),
			services.NewTaskAssignmentService(store),
			services.NewTaskCompletionService(store),
		),
		Priority: handlers.NewPriorityHandler(services.NewPriorityService(priority)),
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Task API is running",
		})
	})
	h.Register(r)

	return r
}
