package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"kolnexus/pkg/apiclient"
	"kolnexus/pkg/middleware"
	"kolnexus/pkg/problems"
)

// Mapping rows keep the backend's field casing; the admin table displays
// them as-is.
type mappingRow struct {
	UserID       string `json:"UserID"`
	DatabaseName string `json:"DatabaseName"`
}

func (a *App) adminRC(r *http.Request) apiclient.RequestContext {
	sess := middleware.SessionFrom(r.Context())
	return apiclient.RequestContext{
		UserID:   sess.UserID,
		Database: a.mgr.Active(sess.UserID),
	}
}

// relay copies an upstream response through verbatim. Mutations are
// never retried and never optimistically confirmed; the admin screen
// re-fetches only after a confirmed success.
func (a *App) relay(w http.ResponseWriter, resp *http.Response, err error, action string) {
	if err != nil {
		a.log.Errorw(action, "err", err)
		problems.Write(w, http.StatusBadGateway, "backend-unreachable", "Reporting backend unavailable", "")
		return
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		a.log.Warnw(action, "relay", err)
	}
}

func (a *App) listMappings(w http.ResponseWriter, r *http.Request) {
	resp, err := a.api.Get(r.Context(), a.adminRC(r), "/mapping", nil)
	a.relay(w, resp, err, "list mappings")
}

func (a *App) addMapping(w http.ResponseWriter, r *http.Request) {
	var b mappingRow
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.UserID == "" || b.DatabaseName == "" {
		problems.Write(w, http.StatusBadRequest, "bad-request", "UserID and DatabaseName are required", "")
		return
	}
	resp, err := a.api.PostJSON(r.Context(), a.adminRC(r), "/mapping", b)
	a.relay(w, resp, err, "add mapping")
}

func (a *App) deleteMappings(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Mappings []mappingRow `json:"mappings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || len(b.Mappings) == 0 {
		problems.Write(w, http.StatusBadRequest, "bad-request", "mappings are required", "")
		return
	}
	for _, m := range b.Mappings {
		if m.UserID == "" || m.DatabaseName == "" {
			problems.Write(w, http.StatusBadRequest, "bad-request", "every mapping needs UserID and DatabaseName", "")
			return
		}
	}
	resp, err := a.api.DeleteJSON(r.Context(), a.adminRC(r), "/mapping", b)
	a.relay(w, resp, err, "delete mappings")
}

func (a *App) listAvailableDatabases(w http.ResponseWriter, r *http.Request) {
	resp, err := a.api.Get(r.Context(), a.adminRC(r), "/databasesavail", nil)
	a.relay(w, resp, err, "list available databases")
}
