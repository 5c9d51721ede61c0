package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by GUAGUALE_STORE.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port         int
	DataDir      string
	Store        string // file, postgres or memory
	DatabaseURL  string
	NATSURL      string // empty disables the NATS reveal publisher
	NATSPrefix   string
	PrizesFile   string // optional YAML seed for sessions without a saved configuration
	LogVerbose   bool
	IdleTimeout  time.Duration
	ItemsPerPage int

	// Reveal policy shared by every card of the deployment.
	RevealThreshold float64 // fraction of the window that must be uncovered, strict >
	RevealWindow    float64 // centered fraction of the surface that is sampled; 1 = full surface
	BrushRadius     float64 // display units
	GridWidth       int
	GridHeight      int
}

func Load() *Config {
	port := 8080
	// Prefer PORT (PaaS convention) then GUAGUALE_PORT.
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	} else if p := os.Getenv("GUAGUALE_PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	}
	dataDir := os.Getenv("GUAGUALE_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	databaseURL := os.Getenv("DATABASE_URL")
	store := strings.ToLower(strings.TrimSpace(os.Getenv("GUAGUALE_STORE")))
	if store == "" {
		store = StoreFile
		if databaseURL != "" {
			store = StorePostgres
		}
	}
	natsPrefix := os.Getenv("NATS_SUBJECT_PREFIX")
	if natsPrefix == "" {
		natsPrefix = "guaguale"
	}
	return &Config{
		Port:            port,
		DataDir:         dataDir,
		Store:           store,
		DatabaseURL:     databaseURL,
		NATSURL:         os.Getenv("NATS_URL"),
		NATSPrefix:      natsPrefix,
		PrizesFile:      os.Getenv("GUAGUALE_PRIZES_FILE"),
		LogVerbose:      envBool("LOG_VERBOSE", false),
		IdleTimeout:     envDuration("SESSION_IDLE_TIMEOUT", time.Hour),
		ItemsPerPage:    envInt("ITEMS_PER_PAGE", 12),
		RevealThreshold: envFloat("REVEAL_THRESHOLD", 0.30),
		RevealWindow:    envFloat("REVEAL_WINDOW", 1.0),
		BrushRadius:     envFloat("BRUSH_RADIUS", 30),
		GridWidth:       envInt("GRID_WIDTH", 100),
		GridHeight:      envInt("GRID_HEIGHT", 60),
	}
}

// Validate rejects values that would make the reveal policy unreachable or meaningless.
func (c *Config) Validate() error {
	var errs []string
	switch c.Store {
	case StoreFile, StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("GUAGUALE_STORE must be one of file, postgres, memory (got %q)", c.Store))
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required when GUAGUALE_STORE=postgres")
	}
	if c.RevealThreshold <= 0 || c.RevealThreshold >= 1 {
		errs = append(errs, "REVEAL_THRESHOLD must be in (0,1)")
	}
	if c.RevealWindow <= 0 || c.RevealWindow > 1 {
		errs = append(errs, "REVEAL_WINDOW must be in (0,1]")
	}
	if c.BrushRadius <= 0 {
		errs = append(errs, "BRUSH_RADIUS must be > 0")
	}
	if c.GridWidth < 1 || c.GridHeight < 1 {
		errs = append(errs, "GRID_WIDTH and GRID_HEIGHT must be >= 1")
	}
	if c.ItemsPerPage < 1 {
		errs = append(errs, "ITEMS_PER_PAGE must be >= 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
