package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"kolnexus/pkg/middleware"
	"kolnexus/pkg/problems"
	"kolnexus/pkg/tenants"
)

type databasesResponse struct {
	Databases []string `json:"databases"`
	Selected  string   `json:"selected,omitempty"`
	Kind      string   `json:"kind,omitempty"`
}

// listDatabases fetches the live tenant list and revalidates the
// persisted selection against it in one round: a stale persisted name is
// discarded and the first entry adopted, exactly once per call.
func (a *App) listDatabases(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	list := a.mgr.Databases(r.Context(), sess.UserID)
	active := a.mgr.RestoreOrDefault(r.Context(), sess.UserID, list)
	resp := databasesResponse{Databases: list, Selected: active}
	if active != "" {
		resp.Kind = tenants.Classify(active).String()
	}
	writeJSON(w, resp, http.StatusOK)
}

func (a *App) selectDatabase(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	var b struct {
		DatabaseName string `json:"databaseName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.DatabaseName == "" {
		problems.Write(w, http.StatusBadRequest, "bad-request", "databaseName is required", "")
		return
	}
	list := a.mgr.Databases(r.Context(), sess.UserID)
	if err := a.mgr.Select(r.Context(), sess.UserID, b.DatabaseName, list); err != nil {
		if errors.Is(err, tenants.ErrUnknownDatabase) {
			problems.Write(w, http.StatusUnprocessableEntity, "unknown-database", "Database is not in the tenant list", b.DatabaseName)
			return
		}
		a.log.Errorw("select database", "user", sess.UserID, "db", b.DatabaseName, "err", err)
		problems.Write(w, http.StatusInternalServerError, "select-failed", "Could not select database", "")
		return
	}
	writeJSON(w, databasesResponse{
		Databases: list,
		Selected:  b.DatabaseName,
		Kind:      tenants.Classify(b.DatabaseName).String(),
	}, http.StatusOK)
}
