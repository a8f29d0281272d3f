package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alfabetiza/assets"
	"github.com/robalobadob/alfabetiza/internal/audio"
	"github.com/robalobadob/alfabetiza/internal/catalog"
	"github.com/robalobadob/alfabetiza/internal/config"
	"github.com/robalobadob/alfabetiza/internal/db"
	"github.com/robalobadob/alfabetiza/internal/game"
	"github.com/robalobadob/alfabetiza/internal/httpserver"
	"github.com/robalobadob/alfabetiza/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else if cfg.SessionSecret == "dev_secret_change_me" {
		log.Warn().Msg("SESSION_SECRET is the development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("load catalog")
	}
	log.Info().Int("games", len(cat.Games())).Int("letters", len(cat.Letters())).Msg("catalog loaded")

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer sqlDB.Close()
	if err := db.Migrate(ctx, sqlDB, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	tts := audio.NewCache(sqlDB,
		audio.NewHTTPSynthesizer(cfg.TTSURL, cfg.Language(), cfg.TTSTimeout),
		cfg.Language())
	if cfg.AudioCacheTTL > 0 {
		n, err := tts.Purge(ctx, time.Now().Add(-cfg.AudioCacheTTL))
		if err != nil {
			log.Warn().Err(err).Msg("purge audio cache")
		} else if n > 0 {
			log.Info().Int64("removed", n).Msg("purged audio cache")
		}
	}

	sessions := store.NewMemoryStore(cfg.SessionTTL)
	go sessions.Janitor(ctx, sweepInterval(cfg.SessionTTL))

	srv := httpserver.New(httpserver.Options{
		Catalog:       cat,
		Sessions:      sessions,
		Engine:        game.NewEngine(nil),
		Audio:         tts,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		CookieName:    cfg.CookieName,
		ClientOrigin:  cfg.ClientOrigin,
		SecureCookies: cfg.SecureCookies,
	})

	log.Info().Str("port", cfg.Port).Msg("starting alfabetiza")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shut down")
}

// sweepInterval checks for idle sessions a few times per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}
