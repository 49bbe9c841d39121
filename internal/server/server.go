package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/modelhub-api/apiserver/config"
	"github.com/modelhub-api/apiserver/internal/db"
	"github.com/modelhub-api/apiserver/internal/handlers"
	"github.com/modelhub-api/apiserver/internal/llm"
	"github.com/modelhub-api/apiserver/internal/mailer"
	"github.com/modelhub-api/apiserver/internal/mq"
	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/internal/storage"
	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/internal/token"
)

// Server wraps the HTTP server, the router and the background workers
// (revocation sweep and the email queue worker).
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
	logger     *slog.Logger

	cancelBackground context.CancelFunc
}

// New constructs a fully wired Server from config.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	revocationRepo, err := newRevocationRepository(cfg, dbConn)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objectStorage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure storage bucket: %w", err)
	}

	queue, err := newEmailQueue(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	documentRepo := store.NewDocumentRepository(dbConn)
	modelRepo := store.NewModelRepository(dbConn)
	contactRepo := store.NewContactRepository(dbConn)
	chatLogRepo := store.NewChatLogRepository(dbConn)

	mailService := mailer.NewService(
		mailer.NewSMTPSender(cfg.SMTP),
		queue,
		cfg.Queue.EmailChannel,
		cfg.ProjectName,
		logger,
	)

	accessService := services.NewAccessService(tokens, revocationRepo, userRepo)
	userService := services.NewUserService(userRepo, revocationRepo, tokens, mailService, cfg.Auth.DeleteRevocationTTL)
	adminService := services.NewAdminService(userRepo, revocationRepo, cfg.Auth.BlockRevocationTTL)
	documentService := services.NewDocumentService(documentRepo, objectStorage, logger)
	modelService := services.NewModelService(modelRepo, objectStorage, logger)
	chatService := services.NewChatService(documentRepo, chatLogRepo, llm.NewClient(cfg.Chatbot))
	contactService := services.NewContactService(contactRepo, mailService)
	sweeper := services.NewSweeper(revocationRepo, chatLogRepo, cfg.Auth.SweepInterval, logger)

	authMiddleware := handlers.RequireAuth(accessService)
	adminMiddleware := handlers.RequireAdmin(accessService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, authMiddleware)
		})
		r.Route("/admin", func(r chi.Router) {
			handlers.AdminRouter(r, adminService, authMiddleware, adminMiddleware)
		})
		r.Route("/documents", func(r chi.Router) {
			handlers.DocumentRouter(r, documentService, authMiddleware, adminMiddleware)
		})
		r.Route("/models", func(r chi.Router) {
			handlers.ModelRouter(r, modelService, authMiddleware, adminMiddleware)
		})
		r.Route("/chatbot", func(r chi.Router) {
			handlers.ChatbotRouter(r, chatService, authMiddleware)
		})
		r.Route("/contact", func(r chi.Router) {
			handlers.ContactRouter(r, contactService, authMiddleware, adminMiddleware)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	backgroundCtx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(backgroundCtx)
	go func() {
		if err := mailService.RunWorker(backgroundCtx); err != nil && backgroundCtx.Err() == nil {
			logger.Error("email worker stopped", "error", err)
		}
	}()

	return &Server{
		httpServer:       httpServer,
		router:           router,
		db:               dbConn,
		queue:            queue,
		logger:           logger,
		cancelBackground: cancel,
	}, nil
}

func newRevocationRepository(cfg config.Config, dbConn *sql.DB) (services.RevocationRepository, error) {
	switch cfg.Auth.RevocationBackend {
	case "", "postgres":
		return store.NewRevocationRepository(dbConn), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedisRevocationRepository(client), nil
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.Auth.RevocationBackend)
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "", "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newEmailQueue returns nil when no broker is configured; the mailer
// then delivers in-process.
func newEmailQueue(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.Queue.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.Queue.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.Queue.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the background workers and closes the HTTP server and
// its resources.
func (s *Server) Shutdown() error {
	if s.cancelBackground != nil {
		s.cancelBackground()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
