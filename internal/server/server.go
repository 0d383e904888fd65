package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskmate/apiserver/config"
	"github.com/taskmate/apiserver/internal/db"
	"github.com/taskmate/apiserver/internal/handlers"
	"github.com/taskmate/apiserver/internal/log"
	"github.com/taskmate/apiserver/internal/mailer"
	"github.com/taskmate/apiserver/internal/mq"
	"github.com/taskmate/apiserver/internal/services"
	"github.com/taskmate/apiserver/internal/storage"
	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/internal/token"
)

// Server wraps the HTTP server, router, and the connections it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New wires the full application: database, token manager, mail backend,
// object storage, services, and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	resetRepo := store.NewResetRepository(dbConn)
	teamRepo := store.NewTeamRepository(dbConn)
	projectRepo := store.NewProjectRepository(dbConn)
	taskRepo := store.NewTaskRepository(dbConn)
	messageRepo := store.NewMessageRepository(dbConn)
	fileRepo := store.NewFileRepository(dbConn)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var broker *mq.MQ
	var mail mailer.Sender
	switch cfg.Mail.Backend {
	case "smtp":
		mail, err = mailer.NewSMTPSender(cfg.SMTP, cfg.Mail.From)
	case "mq":
		broker, err = mq.Connect(ctx, cfg)
		if err == nil {
			mail = mailer.NewMQSender(broker, cfg.Mail.Channel)
		}
	case "log":
		mail = mailer.NewLogSender(logger)
	default:
		err = fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	perms := services.NewPermissionService(teamRepo)
	authService := services.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost, logger)
	resetService := services.NewResetService(userRepo, resetRepo, mail, cfg.Auth.BcryptCost, cfg.Auth.OTPMaxAttempts, logger)
	identity := services.NewIdentityResolver(userRepo, tokens)
	teamService := services.NewTeamService(teamRepo, userRepo, perms)
	projectService := services.NewProjectService(projectRepo, teamRepo, perms)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, perms)
	discussionService := services.NewDiscussionService(messageRepo, perms)

	// File attachments need an object store; "none" runs the server
	// without them.
	var fileHandler *handlers.FileHandler
	if cfg.Storage.Backend != "none" {
		objects, err := storage.Connect(ctx, cfg)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		fileService := services.NewFileService(fileRepo, objects, perms, logger)
		fileHandler = handlers.NewFileHandler(fileService)
	}

	authHandler := handlers.NewAuthHandler(authService, resetService, identity)
	teamHandler := handlers.NewTeamHandler(teamService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	discussionHandler := handlers.NewDiscussionHandler(discussionService)

	authMiddleware := handlers.RequireAuth(identity)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler, authMiddleware)
	})
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Route("/teams", func(r chi.Router) {
			handlers.TeamRouter(r, teamHandler, func(r chi.Router) {
				r.Route("/projects", func(r chi.Router) {
					handlers.ProjectTeamRouter(r, projectHandler)
				})
				r.Route("/messages", func(r chi.Router) {
					handlers.DiscussionRouter(r, discussionHandler)
				})
				if fileHandler != nil {
					r.Route("/files", func(r chi.Router) {
						handlers.FileTeamRouter(r, fileHandler)
					})
				}
			})
		})
		r.Route("/projects", func(r chi.Router) {
			handlers.ProjectRouter(r, projectHandler)
			r.Route("/{projectID}/tasks", func(r chi.Router) {
				handlers.TaskProjectRouter(r, taskHandler)
			})
		})
		r.Route("/tasks", func(r chi.Router) {
			handlers.TaskRouter(r, taskHandler)
		})
		if fileHandler != nil {
			r.Route("/files", func(r chi.Router) {
				handlers.FileRouter(r, fileHandler)
			})
		}
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

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}
