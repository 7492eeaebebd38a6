package gateway

import (
	"net/http"
	"path/filepath"
	"strings"

	"kolnexus/pkg/problems"
)

const maxUploadBytes = 32 << 20

// upload relays a spreadsheet to the backend ingestion endpoint. Only
// the extension is checked here; the backend owns the file format.
func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		problems.Write(w, http.StatusBadRequest, "bad-upload", "Could not parse upload", err.Error())
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		problems.Write(w, http.StatusBadRequest, "bad-upload", "A single file field is required", "")
		return
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(hdr.Filename), ".xlsx") {
		problems.Write(w, http.StatusUnprocessableEntity, "bad-upload", "Only .xlsx spreadsheets are accepted", hdr.Filename)
		return
	}

	resp, err := a.api.UploadFile(r.Context(), a.adminRC(r), "/upload", hdr.Filename, f)
	a.relay(w, resp, err, "upload spreadsheet")
}
