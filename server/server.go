package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"KPlayer/cache"
	"KPlayer/config"
	"KPlayer/core/auth"
	"KPlayer/db"
	"KPlayer/logger"
	"KPlayer/repository"
	"KPlayer/storage"

	"github.com/gorilla/mux"
)

// corsMiddleware allows the browser client on any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter registers every route of h.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// auth
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.LogoutHandler).Methods(http.MethodPost)

	// playlists
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}/tracks", h.AuthMiddleware(h.AddTrackHandler)).Methods(http.MethodPost)

	// songs
	router.HandleFunc("/api/songs", h.AuthMiddleware(h.ListSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/songs", h.AuthMiddleware(h.UploadSongHandler)).Methods(http.MethodPost)

	router.HandleFunc("/ws/playlists/create", h.AuthMiddleware(h.CreationDialogHandler)).Methods(http.MethodGet)

	// preflight; corsMiddleware answers it
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return router
}

// Start connects the backends and serves until SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	gormDB, err := db.ConnectGormDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.CloseGormDB(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info("Successfully connected to Redis")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	blobs, err := storage.NewMinioStore(ctx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize MinIO: %w", err)
	}

	users := repository.NewGormUserRepository(gormDB)
	authService := auth.NewService(users, cache.NewSessionCache(redisClient), cfg.JWTSecret, cfg.TokenTTL)
	apiHandler := NewAPIHandler(
		authService,
		repository.NewGormPlaylistRepository(gormDB),
		repository.NewGormTrackRepository(gormDB),
		repository.NewGormSongRepository(gormDB),
		blobs,
		cfg,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-stop:
	}

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
