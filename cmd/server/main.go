package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/winsznx/celo-guestbook/internal/api"
	"github.com/winsznx/celo-guestbook/internal/embedctx"
	"github.com/winsznx/celo-guestbook/internal/frame"
	"github.com/winsznx/celo-guestbook/internal/gateway"
	"github.com/winsznx/celo-guestbook/internal/identity"
	"github.com/winsznx/celo-guestbook/internal/session"
	"github.com/winsznx/celo-guestbook/internal/txflow"
	"github.com/winsznx/celo-guestbook/pkg/httpx"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	port := envOr("SERVICE_PORT", "8080")
	gatewayBase := envOr("GATEWAY_BASE_URL", "http://localhost:8090")
	hostBase := os.Getenv("HOST_BASE_URL") // empty means not embedded
	appURL := envOr("APP_URL", "https://guestbook-app-ruddy.vercel.app")
	dataDir := envOr("DATA_DIR", "./data")

	refreshDelay := txflow.DefaultRefreshDelay
	if v := os.Getenv("REFRESH_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatal("bad REFRESH_DELAY", zap.String("value", v), zap.Error(err))
		}
		refreshDelay = d
	}

	store, err := identity.OpenBadgerStore(dataDir)
	if err != nil {
		log.Fatal("opening identity store", zap.String("dir", dataDir), zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	reconciler := identity.NewReconciler(store, log)
	// The persisted load must finish before the reconciler reports its
	// first value, so a known session never flashes as signed out.
	reconciler.Bootstrap()

	gw := gateway.New(gatewayBase)

	var detector *embedctx.Detector
	if hostBase != "" {
		detector = embedctx.NewDetector(embedctx.NewHostClient(hostBase), log)
		go func() {
			detector.Run(context.Background())
			if _, account := detector.State(); account != nil {
				reconciler.SetEmbedded(account)
			}
		}()
	}

	sessions := session.NewManager(gw, gw, refreshDelay, log)

	r := chi.NewRouter()
	r.Use(httpx.RequestLogger(log))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Route("/frame", frame.NewHandler(gw, appURL, log).Routes)
	r.Route("/api", api.NewHandler(gw, sessions, reconciler, detector, appURL, log).Routes)

	log.Info("guestbook server listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
