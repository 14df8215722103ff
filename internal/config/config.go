package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/auth"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/envconfig"
)

// Backend selects the progress persistence implementation.
type Backend string

const (
	BackendFirestore Backend = "firestore"
	BackendMemory    Backend = "memory"
)

// Config encapsulates the runtime configuration for the progress service.
type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string
	Backend      Backend `validate:"required"`
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Leaderboard  LeaderboardConfig
}

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     auth.Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	Database     string
	EmulatorHost string
}

// LeaderboardConfig bounds the leaderboard query.
type LeaderboardConfig struct {
	MaxEntries int
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		Backend:      Backend(strings.ToLower(envconfig.Get("PROGRESS_BACKEND", string(BackendFirestore)))),
		Auth: AuthConfig{
			Mode:     auth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(auth.ModeNoop)))),
			JWKSURL:  envconfig.Get("FIREBASE_JWKS_URL", ""),
			Audience: envconfig.Get("FIREBASE_PROJECT_ID", ""),
			Issuer:   envconfig.Get("FIREBASE_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			Database:     envconfig.Get("FIRESTORE_DATABASE", "(default)"),
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Leaderboard: LeaderboardConfig{
			MaxEntries: parseIntFallback(envconfig.Get("LEADERBOARD_MAX_ENTRIES", "50"), 50),
		},
	}

	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("port must be specified")
	}

	switch cfg.Backend {
	case BackendFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when PROGRESS_BACKEND=firestore")
		}
	case BackendMemory:
		// no-op
	default:
		return fmt.Errorf("unsupported progress backend: %s", cfg.Backend)
	}

	switch cfg.Auth.Mode {
	case auth.ModeFirebase:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("FIREBASE_JWKS_URL is required when AUTH_MODE=firebase")
		}
	case auth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	if cfg.Leaderboard.MaxEntries <= 0 {
		return fmt.Errorf("LEADERBOARD_MAX_ENTRIES must be > 0")
	}

	return nil
}

func parseIntFallback(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}
