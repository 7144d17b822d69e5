// Command studio-live runs a voice conversation against the studio's AI
// capability and saves the transcript into the project store when it ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Anety5/ioa-studio/pkg/ai/gemini"
	"github.com/Anety5/ioa-studio/pkg/audio"
	"github.com/Anety5/ioa-studio/pkg/live"
	"github.com/Anety5/ioa-studio/pkg/live/remotews"
	"github.com/Anety5/ioa-studio/pkg/store"
	"github.com/Anety5/ioa-studio/pkg/store/pgblob"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to $IOA_CONFIG)")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(context.Background(), *configPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "studio-live: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, logger *slog.Logger) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	blob, cleanup, err := openBlob(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	projects := store.New(blob, store.WithLogger(logger))

	dial, err := buildDialer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	speaker, err := audio.NewSpeaker()
	if err != nil {
		return err
	}
	defer speaker.Close()

	mic := audio.NewMicrophone(
		audio.WithMicLogger(logger),
		audio.WithFrameDuration(cfg.FrameDuration),
	)

	metrics := live.NewMetrics("ioa")
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, metrics, logger)
	}

	session := live.NewSession(dial, mic, speaker,
		live.WithSessionLogger(logger),
		live.WithMetrics(metrics),
	)

	if err := session.Start(ctx); err != nil {
		return err
	}
	logger.Info("session starting, press Ctrl-C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	session.Stop()
	if err := session.Err(); err != nil {
		logger.Warn("session ended with error", "error", err)
	}

	return saveTranscript(projects, cfg.TranscriptName, session.Transcript())
}

// openBlob picks the storage backend: Postgres when a DSN is configured,
// otherwise a directory of blob files.
func openBlob(ctx context.Context, cfg *Config) (store.Blob, func(), error) {
	if cfg.PostgresDSN != "" {
		pg, err := pgblob.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres blob store: %w", err)
		}
		return pg, pg.Close, nil
	}
	fb, err := store.NewFileBlob(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open file blob store: %w", err)
	}
	return fb, func() {}, nil
}

func buildDialer(ctx context.Context, cfg *Config, logger *slog.Logger) (live.Dialer, error) {
	if cfg.Endpoint != "" {
		return remotews.Dialer(remotews.Config{
			URL:    cfg.Endpoint,
			APIKey: os.Getenv("IOA_API_KEY"),
			Model:  cfg.Model,
			Voice:  cfg.Voice,
			Logger: logger,
		}), nil
	}

	provider, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"), gemini.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return provider.OpenLive, nil
}

func serveMetrics(addr string, metrics *live.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

// saveTranscript stores the conversation in the default project. An empty
// conversation saves nothing.
func saveTranscript(projects *store.Store, name string, transcript *live.Transcript) error {
	entries := transcript.Entries()
	if len(entries) == 0 {
		return nil
	}

	content := &store.LiveConversationContent{
		Entries: make([]store.ConversationEntry, 0, len(entries)),
	}
	for _, e := range entries {
		content.Entries = append(content.Entries, store.ConversationEntry{
			Speaker: string(e.Speaker),
			Text:    e.Text,
		})
	}

	title := fmt.Sprintf("%s %s", name, time.Now().Format("2006-01-02 15:04"))
	_, err := projects.SaveToDefault(title, store.AssetLiveConversation, content)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}
