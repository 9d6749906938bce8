package main

import (
	"flag"
	"net/http"

	"go.uber.org/zap"

	"github.com/saltware/website/internal/auth"
	"github.com/saltware/website/internal/config"
	"github.com/saltware/website/internal/dashboard"
	"github.com/saltware/website/internal/store"
	"github.com/saltware/website/internal/web"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dataDir := flag.String("data", "data", "data directory (sqlite engine)")
	flag.Parse()

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg := config.Load(*addr, *dataDir)

	st, err := store.Open(cfg.Driver, cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	gate := auth.NewGate(st)
	ctrl := dashboard.New(st, gate, logger)
	srv := web.New(logger, gate, ctrl, st)

	logger.Info("site running", zap.String("addr", cfg.Addr), zap.String("driver", cfg.Driver))
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
