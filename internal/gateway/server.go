package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kolnexus/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware. The route
// tree mirrors the session gate: public auth endpoints, then everything
// behind the session middleware, with the mapping admin and the
// dashboards mutually exclusive by role.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Tracing(a.cfg))
	r.Use(middleware.Metrics())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(pub chi.Router) {
		pub.Use(middleware.RateLimit(a.cfg.AuthRatePerMin))
		pub.Post("/auth/sign-in", a.signIn)
		pub.Post("/auth/new-password", a.completeNewPassword)
		pub.Post("/auth/forgot-password", a.forgotPassword)
		pub.Post("/auth/forgot-password/confirm", a.confirmForgotPassword)
	})

	r.Group(func(priv chi.Router) {
		priv.Use(middleware.Session(a.gate))
		priv.Get("/session", a.getSession)
		priv.Post("/auth/sign-out", a.signOut)
		priv.Get("/databases", a.listDatabases)
		priv.Put("/databases/selected", a.selectDatabase)

		priv.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin)
			ar.Get("/mapping", a.listMappings)
			ar.Post("/mapping", a.addMapping)
			ar.Delete("/mapping", a.deleteMappings)
			ar.Get("/databases", a.listAvailableDatabases)
			ar.Post("/upload", a.upload)
		})

		priv.Route("/dashboard", func(dr chi.Router) {
			dr.Use(middleware.RequireStandardUser)
			a.views.Mount(dr)
		})
	})

	return r
}
