package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/itempurchase/internal/crmclient"
	"github.com/angelmondragon/itempurchase/internal/purchasetool"
	"github.com/angelmondragon/itempurchase/pkg/auth"
	"github.com/angelmondragon/itempurchase/pkg/config"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "purchase-tool", Output: os.Stderr})

	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "purchase-tool",
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.Env,
		"base_url": cfg.BaseURL,
	})
	if cfg.AccountID != "" {
		ctx = logg.WithAccountID(ctx, cfg.AccountID)
	}

	token, err := resolveToken(cfg, time.Now())
	requireResource(ctx, logg, "access token", err)

	client, err := crmclient.New(cfg.BaseURL,
		crmclient.WithToken(token),
		crmclient.WithTimeout(cfg.Timeout),
	)
	requireResource(ctx, logg, "api client", err)

	registry := prometheus.NewRegistry()
	out := newConsole(os.Stdout, cfg.BaseURL)

	tool, err := purchasetool.New(purchasetool.Deps{
		Items:     client,
		Purchases: client,
		Images:    client,
		Attacher:  client,
		Records:   client,
		Navigator: out,
		Notifier:  out,
		Profiles:  client,
		Renderer:  out,
		Metrics:   metrics.NewRemoteCallMetrics(registry),
		Logger:    logg,
	}, purchasetool.Options{
		AccountID:         cfg.AccountID,
		EnrichmentTimeout: cfg.EnrichmentTimeout,
	})
	requireResource(ctx, logg, "purchase tool", err)

	logg.Info(ctx, "purchase tool ready")
	if err := tool.Attach(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "initial item load failed")
	}

	sh := newShell(tool, out, registry, cfg.AccountID)
	sh.printView()
	if err := sh.run(ctx, bufio.NewScanner(os.Stdin)); err != nil {
		logg.Error(ctx, "purchase tool stopped", err)
		os.Exit(1)
	}
}

// resolveToken prefers a configured token and otherwise mints one with the
// local signing secret.
func resolveToken(cfg *config.ClientConfig, now time.Time) (string, error) {
	if token := strings.TrimSpace(cfg.Token); token != "" {
		return token, nil
	}
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("set %s or %s", "ITEMPURCHASE_CLIENT_TOKEN", config.EnvJWTSecret)
	}
	userID, err := uuid.Parse(strings.TrimSpace(cfg.UserID))
	if err != nil {
		return "", fmt.Errorf("invalid client user id: %w", err)
	}
	payload := auth.AccessTokenPayload{UserID: userID}
	if cfg.AccountID != "" {
		accountID, err := uuid.Parse(strings.TrimSpace(cfg.AccountID))
		if err != nil {
			return "", fmt.Errorf("invalid client account id: %w", err)
		}
		payload.AccountID = &accountID
	}
	return auth.MintAccessToken(cfg.JWT(), now, payload)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
