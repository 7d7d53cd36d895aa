package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tt-P607/biometric-sleep-bot/internal/ai"
	"github.com/tt-P607/biometric-sleep-bot/internal/command"
	"github.com/tt-P607/biometric-sleep-bot/internal/config"
	"github.com/tt-P607/biometric-sleep-bot/internal/discord"
	"github.com/tt-P607/biometric-sleep-bot/internal/logging"
	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
	"github.com/tt-P607/biometric-sleep-bot/internal/storage"
	v "github.com/tt-P607/biometric-sleep-bot/internal/version"
	"github.com/tt-P607/biometric-sleep-bot/pkg/retrylimit"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", v.Version).Msgf("starting %s", v.AppName)

	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}
	defer store.Close()

	params, err := cfg.SleepParams()
	if err != nil {
		log.Fatal().Err(err).Msg("sleep settings invalid")
	}
	engine := sleep.NewEngine(params)
	engine.SetStore(store)
	engine.Restore(store.LoadSessions(), time.Now())

	if cfg.Sleep.Enabled {
		go engine.RunSweeper(ctx, time.Minute)
	}

	provider, err := ai.NewProvider(cfg.AIProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("ai provider setup failed")
	}
	command.Register(&command.ChatCommand{
		Provider: provider,
		Limiter:  retrylimit.NewAdaptiveLimiter(rate.Limit(1), rate.Limit(0.2), rate.Limit(2), 0.1, 0.5),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, store, engine); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	case <-ctx.Done():
	}

	log.Info().Msg("discord bot exited cleanly")
}
