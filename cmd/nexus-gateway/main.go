// cmd/nexus-gateway/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kolnexus/internal/gateway"
	"kolnexus/pkg/config"
	"kolnexus/pkg/db"
	"kolnexus/pkg/identity"
	"kolnexus/pkg/logger"
	"kolnexus/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, "nexus-gateway")
	defer log.Sync()

	var store tenants.SelectionStore
	switch {
	case cfg.DatabaseURL != "":
		pool := db.MustConnect(cfg, log)
		if err := tenants.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		store = tenants.NewPostgresStore(pool)
	case cfg.RedisURL != "":
		store = tenants.NewRedisStore(db.MustRedis(cfg, log))
	default:
		store = tenants.NewMemoryStore()
	}

	if cfg.IDPEndpoint == "" || cfg.IDPClientID == "" {
		log.Warnw("identity provider not fully configured", "endpoint", cfg.IDPEndpoint)
	}
	prov := identity.NewCognitoProvider(cfg.IDPEndpoint, cfg.IDPClientID)

	app, err := gateway.New(log, cfg, prov, store)
	if err != nil {
		log.Fatalw("init", "err", err)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("nexus-gateway listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Infow("nexus-gateway stopped")
}
