// pkg/apiclient/client.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"kolnexus/pkg/tenants"
)

// ErrNoDatabase is returned before any network call when a non-bootstrap
// path is requested while no database is selected.
var ErrNoDatabase = errors.New("no database selected")

// bootstrapPaths may be called before a database is selected and are never
// re-prefixed by the tenant mount.
var bootstrapPaths = []string{
	"/databases",
	"/databasesavail",
	"/mapping",
	"/upload",
	"/id/upload",
	"/api/upload",
}

// RequestContext carries the caller identity and active database for one
// outgoing call. It is computed at call time, never stored.
type RequestContext struct {
	UserID   string
	Database string
}

// IdentityFunc resolves the caller's identity id when the request context
// arrives without one. Must be idempotent; failures leave the id unset.
type IdentityFunc func(ctx context.Context) (string, error)

// Client is the single outbound HTTP client to the reporting backend.
// Per request it selects the mount prefix from the tenant naming
// convention, rejects non-bootstrap calls without a selected database,
// and injects userId and databaseName query parameters. Transport errors
// are never retried and propagate to the caller as-is.
type Client struct {
	base     *url.URL
	http     *http.Client
	identity IdentityFunc
	log      *zap.SugaredLogger
}

func New(baseURL string, log *zap.SugaredLogger, identity IdentityFunc) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	return &Client{
		base:     u,
		http:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		identity: identity,
		log:      log,
	}, nil
}

// IsBootstrap reports whether path is on the fixed bootstrap allow-list.
func IsBootstrap(path string) bool {
	for _, p := range bootstrapPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Route resolves the backend path for a request: bootstrap paths pass
// through unmodified, everything else gets the mount prefix of the
// database's kind. Returns ErrNoDatabase for non-bootstrap paths with an
// empty database.
func Route(path, database string) (string, error) {
	if IsBootstrap(path) {
		return path, nil
	}
	if database == "" {
		return "", ErrNoDatabase
	}
	return tenants.Classify(database).Mount() + path, nil
}

// Do issues one request. rc.UserID is resolved through the identity
// function when empty; resolution failures are logged and the id stays
// unset rather than failing the call.
func (c *Client) Do(ctx context.Context, rc RequestContext, method, path string, q url.Values, body io.Reader, contentType string) (*http.Response, error) {
	if rc.UserID == "" && c.identity != nil {
		id, err := c.identity(ctx)
		if err != nil {
			c.log.Errorw("resolve identity", "err", err)
		} else {
			rc.UserID = id
		}
	}

	routed, err := Route(path, rc.Database)
	if err != nil {
		rejects.Inc()
		return nil, err
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + routed
	params := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set("userId", rc.UserID)
	if rc.Database != "" {
		params.Set("databaseName", rc.Database)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	mount := "bootstrap"
	if !IsBootstrap(path) {
		mount = tenants.Classify(rc.Database).Mount()
	}
	if err != nil {
		requests.WithLabelValues(mount, "error").Inc()
		return nil, err
	}
	requests.WithLabelValues(mount, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// Get issues a GET and returns the raw response for relaying.
func (c *Client) Get(ctx context.Context, rc RequestContext, path string, q url.Values) (*http.Response, error) {
	return c.Do(ctx, rc, http.MethodGet, path, q, nil, "")
}

// GetJSON issues a GET and decodes a JSON body. Non-2xx statuses are
// returned as errors carrying the upstream status.
func (c *Client) GetJSON(ctx context.Context, rc RequestContext, path string, q url.Values, out any) error {
	resp, err := c.Get(ctx, rc, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, rc RequestContext, path string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, rc, http.MethodPost, path, nil, bytes.NewReader(b), "application/json")
}

// DeleteJSON issues a DELETE with a JSON body (the mapping endpoint takes
// the rows to delete in the body).
func (c *Client) DeleteJSON(ctx context.Context, rc RequestContext, path string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, rc, http.MethodDelete, path, nil, bytes.NewReader(b), "application/json")
}

// UploadFile posts r as a multipart form with the single "file" field.
func (c *Client) UploadFile(ctx context.Context, rc RequestContext, path, filename string, r io.Reader) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.Do(ctx, rc, http.MethodPost, path, nil, &buf, mw.FormDataContentType())
}
