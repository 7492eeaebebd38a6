package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"kolnexus/internal/views"
	"kolnexus/pkg/apiclient"
	"kolnexus/pkg/config"
	"kolnexus/pkg/identity"
	"kolnexus/pkg/tenants"
)

// App is the gateway application container.
// Handlers and middleware have methods on this type.
//
// Keep it lean: shared deps and config only.
// Request-scoped work should use context.
type App struct {
	log   *zap.SugaredLogger
	cfg   config.Config
	prov  identity.Provider
	gate  *identity.Gate
	api   *apiclient.Client
	mgr   *tenants.Manager
	views *views.Resolver
}

// New constructs App and wires the request router, the session gate and
// the tenant manager together.
func New(log *zap.SugaredLogger, cfg config.Config, prov identity.Provider, store tenants.SelectionStore) (*App, error) {
	api, err := apiclient.New(cfg.BackendBaseURL, log, nil)
	if err != nil {
		return nil, err
	}
	gate, err := identity.NewGate(cfg, prov, log)
	if err != nil {
		return nil, err
	}
	mgr := tenants.NewManager(log, store, func(ctx context.Context, userID string) ([]string, error) {
		var out struct {
			Databases []string `json:"databases"`
		}
		rc := apiclient.RequestContext{UserID: userID}
		if err := api.GetJSON(ctx, rc, "/databases", nil, &out); err != nil {
			return nil, err
		}
		return out.Databases, nil
	})

	reg := views.NewRegistry()
	if cfg.ViewManifest != "" {
		if err := reg.LoadFile(cfg.ViewManifest); err != nil {
			return nil, err
		}
		log.Infow("view manifest loaded", "path", cfg.ViewManifest)
	}

	return &App{
		log:   log,
		cfg:   cfg,
		prov:  prov,
		gate:  gate,
		api:   api,
		mgr:   mgr,
		views: views.NewResolver(log, api, mgr, reg),
	}, nil
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
