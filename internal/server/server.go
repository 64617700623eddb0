// Package server is the composition root: it wires the repositories,
// services, handlers and realtime hub together and owns the HTTP lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/config"
	"github.com/rmacedo/presenteio/internal/handler"
	"github.com/rmacedo/presenteio/internal/middleware"
	"github.com/rmacedo/presenteio/internal/realtime"
	sqliteRepo "github.com/rmacedo/presenteio/internal/repository/sqlite"
	"github.com/rmacedo/presenteio/internal/service"
)

// Server owns the router, the database connection and the realtime hub.
// The database is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency chain. Each layer receives only the
// interfaces it needs: services get repository interfaces, handlers get
// services, nothing below the handler layer sees HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWT.Secret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	google := auth.NewGoogleProvider(
		s.config.Google.ClientID,
		s.config.Google.ClientSecret,
		s.config.Google.CallbackURL,
	)

	hub := realtime.NewHub(s.logger)
	listService := service.NewListService(s.db, hub, s.logger)
	profileService := service.NewProfileService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(google, tokens, profileService, s.config.FrontendURL, s.logger)
	listHandler := handler.NewListHandler(listService, profileService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)
	wsHandler := handler.NewWSHandler(hub, listService, profileService, s.logger)

	s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		// Signed-in surface: the owner's own resources plus the claim
		// transitions, which all require an authenticated principal.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Put("/me/profile", profileHandler.HandleUpdate)
			r.Get("/lists", listHandler.HandleMine)
			r.Post("/lists", listHandler.HandleCreate)
			r.Patch("/lists/{listID}", listHandler.HandleRename)
			r.Delete("/lists/{listID}", listHandler.HandleDelete)
			r.Post("/lists/{listID}/items", listHandler.HandleCreateItem)
			r.Put("/lists/{listID}/items/{itemID}", listHandler.HandleUpdateItem)
			r.Delete("/lists/{listID}/items/{itemID}", listHandler.HandleRemoveItem)
			r.Post("/lists/{listID}/items/{itemID}/claim", listHandler.HandleClaimItem)
			r.Post("/lists/{listID}/items/{itemID}/unclaim", listHandler.HandleUnclaimItem)
			r.Post("/lists/{listID}/items/{itemID}/reset", listHandler.HandleResetItem)
		})

		// Public surface: anyone with the code can browse, and profiles are
		// readable so visitors can check sizes before picking a gift.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/lists/code/{code}", listHandler.HandleByCode)
			r.Get("/profiles/{profileID}", profileHandler.HandleGet)
		})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/ws/lists/{code}", wsHandler.HandleSubscribe)
	})
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/ws/me/lists", wsHandler.HandleSubscribeMine)
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
//
// No blanket read/write timeouts: the websocket subscriptions are
// long-lived, so only the header read and idle keep-alives are bounded.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("environment", s.config.Environment),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
