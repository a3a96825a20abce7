package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/internal/config"
	"github.com/AnshRaj112/serenify-vent/internal/database"
	"github.com/AnshRaj112/serenify-vent/internal/store"
	"github.com/AnshRaj112/serenify-vent/pkg/utils"
)

// app holds everything a command needs.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *api.Client
	store  *store.Store
}

func loadConfig(cmd *cobra.Command) *config.Config {
	// Load env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}
	cfg := config.Load()

	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StoreDriver = strings.ToLower(v)
	}
	if v, _ := cmd.Flags().GetString("session"); v != "" {
		cfg.SessionID = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
	return cfg
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsProduction() {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg := loadConfig(cmd)
	log := newLogger(cfg)

	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	var storeOpts []store.Option
	storeOpts = append(storeOpts, store.WithLogger(log))
	if cfg.EncryptionKey != "" {
		key, err := utils.ParseEncryptionKey(cfg.EncryptionKey)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️  ENCRYPTION_KEY is invalid, storing session data unencrypted")
			log.Warn().Msg("   Key must be base64-encoded 32 bytes. Generate with: openssl rand -base64 32")
		} else {
			storeOpts = append(storeOpts, store.WithEncryptionKey(key))
			log.Debug().Msg("✅ Encryption key configured")
		}
	}

	st, err := openStore(ctx, cfg, log, storeOpts)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithRateLimit(cfg.APIRPS, cfg.APIBurst),
		api.WithLogger(log),
	)

	return &app{cfg: cfg, log: log, client: client, store: st}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts []store.Option) (*store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Debug().Msg("Using in-memory session store")
		return store.NewMemory(cfg.SessionID, opts...), nil

	case config.StoreRedis:
		log.Debug().Msg("Connecting to Redis...")
		client, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Debug().Msg("✅ Connected to Redis")
		return store.NewRedis(client, cfg.SessionID, opts...), nil

	default:
		log.Debug().Str("path", cfg.SQLitePath).Msg("Opening SQLite session store...")
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		backend := store.NewSQLiteBackend(db)
		if n, err := backend.PurgeExpired(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️  failed to purge expired session data")
		} else if n > 0 {
			log.Debug().Int64("rows", n).Msg("Purged expired session data")
		}
		return store.New(backend, cfg.SessionID, opts...), nil
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("⚠️  failed to close session store")
	}
}
