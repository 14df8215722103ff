package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/auth"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/config"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/httpapi"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/logging"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/progress"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/server"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("progress-service")

	var repo progress.Repository
	switch cfg.Backend {
	case config.BackendFirestore:
		client, err := firestore.NewClientWithDatabase(ctx, cfg.GCPProjectID, cfg.Firestore.Database)
		if err != nil {
			panic(fmt.Errorf("firestore client: %w", err))
		}
		defer client.Close()
		repo = progress.NewFirestoreRepository(client)
	case config.BackendMemory:
		logger.Warn("using in-memory progress backend, state will not survive restarts")
		repo = progress.NewMemoryRepository()
	}

	progressService := progress.NewService(repo)

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := server.NewRouter("progress-service", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			// Register progress routes
			httpapi.RegisterRoutes(r, progressService, cfg.Leaderboard.MaxEntries)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
