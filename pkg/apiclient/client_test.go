package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestRoute(t *testing.T) {
	cases := []struct {
		path, db string
		want     string
		wantErr  error
	}{
		{"/databases", "", "/databases", nil},
		{"/databasesavail", "", "/databasesavail", nil},
		{"/mapping", "", "/mapping", nil},
		{"/upload", "", "/upload", nil},
		{"/id/upload", "", "/id/upload", nil},
		{"/api/upload", "", "/api/upload", nil},
		{"/doctors", "acme", "/id/doctors", nil},
		{"/doctors", "profile_acme", "/api/doctors", nil},
		{"/biography", "profile_acme", "/api/biography", nil},
		{"/doctors", "", "", ErrNoDatabase},
		// Bootstrap paths keep their shape even with a database selected.
		{"/databases", "profile_acme", "/databases", nil},
	}
	for _, c := range cases {
		got, err := Route(c.path, c.db)
		if !errors.Is(err, c.wantErr) {
			t.Errorf("Route(%q, %q) err = %v, want %v", c.path, c.db, err, c.wantErr)
			continue
		}
		if got != c.want {
			t.Errorf("Route(%q, %q) = %q, want %q", c.path, c.db, got, c.want)
		}
	}
}

type captured struct {
	path  string
	query url.Values
}

func testClient(t *testing.T, identity IdentityFunc) (*Client, *captured, *int) {
	t.Helper()
	var last captured
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		last = captured{path: r.URL.Path, query: r.URL.Query()}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, zap.NewNop().Sugar(), identity)
	if err != nil {
		t.Fatal(err)
	}
	return c, &last, &hits
}

func TestDoInjectsIdentityAndDatabase(t *testing.T) {
	c, last, _ := testClient(t, nil)
	rc := RequestContext{UserID: "u1", Database: "profile_acme"}

	resp, err := c.Get(context.Background(), rc, "/doctors", url.Values{"year": {"2024"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if last.path != "/api/doctors" {
		t.Fatalf("backend path = %q, want /api/doctors", last.path)
	}
	if got := last.query.Get("userId"); got != "u1" {
		t.Fatalf("userId = %q", got)
	}
	if got := last.query.Get("databaseName"); got != "profile_acme" {
		t.Fatalf("databaseName = %q", got)
	}
	if got := last.query.Get("year"); got != "2024" {
		t.Fatalf("caller query param lost: year = %q", got)
	}
}

func TestDoUsesStandardMount(t *testing.T) {
	c, last, _ := testClient(t, nil)
	rc := RequestContext{UserID: "u1", Database: "acme"}

	resp, err := c.Get(context.Background(), rc, "/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if last.path != "/id/events" {
		t.Fatalf("backend path = %q, want /id/events", last.path)
	}
}

func TestDoRejectsWithoutDatabaseBeforeNetwork(t *testing.T) {
	c, _, hits := testClient(t, nil)

	_, err := c.Get(context.Background(), RequestContext{UserID: "u1"}, "/doctors", nil)
	if !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("err = %v, want ErrNoDatabase", err)
	}
	if *hits != 0 {
		t.Fatalf("backend was reached %d times for a rejected call", *hits)
	}
}

func TestDoBootstrapPassesWithoutDatabase(t *testing.T) {
	c, last, _ := testClient(t, nil)

	resp, err := c.Get(context.Background(), RequestContext{UserID: "u1"}, "/databases", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if last.path != "/databases" {
		t.Fatalf("backend path = %q, want /databases", last.path)
	}
	if last.query.Has("databaseName") {
		t.Fatal("databaseName sent on a bootstrap call with no selection")
	}
}

func TestDoResolvesIdentityWhenUnset(t *testing.T) {
	c, last, _ := testClient(t, func(ctx context.Context) (string, error) {
		return "resolved-user", nil
	})

	resp, err := c.Get(context.Background(), RequestContext{}, "/databases", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := last.query.Get("userId"); got != "resolved-user" {
		t.Fatalf("userId = %q, want resolved-user", got)
	}
}

func TestDoIdentityFailureLeavesIDUnset(t *testing.T) {
	c, last, _ := testClient(t, func(ctx context.Context) (string, error) {
		return "", errors.New("idp down")
	})

	resp, err := c.Get(context.Background(), RequestContext{}, "/databases", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := last.query.Get("userId"); got != "" {
		t.Fatalf("userId = %q, want empty", got)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, err := New(addr, zap.NewNop().Sugar(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), RequestContext{UserID: "u1", Database: "acme"}, "/doctors", nil); err == nil {
		t.Fatal("expected a transport error from a closed backend")
	}
}

func TestGetJSONRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, zap.NewNop().Sugar(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]any
	err = c.GetJSON(context.Background(), RequestContext{UserID: "u1"}, "/databases", nil, &out)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("GetJSON err = %v, want status 500 error", err)
	}
}

func TestUploadFile(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, zap.NewNop().Sugar(), nil)
	if err != nil {
		t.Fatal(err)
	}

	rc := RequestContext{UserID: "admin", Database: "acme"}
	resp, err := c.UploadFile(context.Background(), rc, "/upload", "kols.xlsx", strings.NewReader("sheet-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if gotName != "kols.xlsx" || gotBody != "sheet-bytes" {
		t.Fatalf("upload relayed %q/%q", gotName, gotBody)
	}
}
