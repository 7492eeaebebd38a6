// internal/views/resolver.go
package views

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kolnexus/pkg/apiclient"
	"kolnexus/pkg/middleware"
	"kolnexus/pkg/problems"
	"kolnexus/pkg/tenants"
)

// Resolver serves the dashboard routes. Each request resolves the active
// database and its kind exactly once, then relays to the matching view
// set's upstream; a single request is never served from a mix of
// variants. Responses that land after the caller switched tenants are
// discarded rather than relayed.
type Resolver struct {
	log *zap.SugaredLogger
	api *apiclient.Client
	mgr *tenants.Manager
	reg *Registry
}

func NewResolver(log *zap.SugaredLogger, api *apiclient.Client, mgr *tenants.Manager, reg *Registry) *Resolver {
	return &Resolver{log: log, api: api, mgr: mgr, reg: reg}
}

// Mount registers every dashboard route. All dashboard reads are GETs.
func (v *Resolver) Mount(r chi.Router) {
	for path, byKind := range v.reg.Table() {
		r.Get(path, v.relay(byKind))
	}
}

var paramRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

func (v *Resolver) relay(byKind map[tenants.Kind]Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFrom(r.Context())
		dbName := v.mgr.Active(sess.UserID)
		if dbName == "" {
			problems.Write(w, http.StatusConflict, "no-database", "No database selected", "")
			return
		}
		kind := tenants.Classify(dbName)
		route, ok := byKind[kind]
		if !ok {
			problems.Write(w, http.StatusNotFound, "no-view", "View not available for this tenant", "")
			return
		}
		gen := v.mgr.Generation(sess.UserID)

		upstream := paramRe.ReplaceAllStringFunc(route.Upstream, func(m string) string {
			name := m[1 : len(m)-1]
			return url.PathEscape(chi.URLParam(r, name))
		})

		rc := apiclient.RequestContext{UserID: sess.UserID, Database: dbName}
		resp, err := v.api.Get(r.Context(), rc, upstream, r.URL.Query())
		if err != nil {
			if errors.Is(err, apiclient.ErrNoDatabase) {
				problems.Write(w, http.StatusConflict, "no-database", "No database selected", "")
				return
			}
			v.log.Errorw("dashboard fetch", "reqid", middleware.RequestIDFrom(r.Context()), "view", route.Name, "db", dbName, "err", err)
			problems.Write(w, http.StatusBadGateway, "backend-unreachable", "Reporting backend unavailable", "")
			return
		}
		defer resp.Body.Close()

		// The response belongs to the tenant that issued it. If the
		// selection moved while the call was in flight, drop the payload.
		if v.mgr.Generation(sess.UserID) != gen {
			problems.Write(w, http.StatusConflict, "tenant-changed", "Database changed while the request was in flight", "")
			return
		}

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			v.log.Warnw("relay body", "view", route.Name, "err", err)
		}
	}
}
