// pkg/identity/gate.go
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/jmespath/go-jmespath"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"kolnexus/pkg/config"
)

// Session is the resolved caller state every protected handler keys off.
// The zero value means unauthenticated.
type Session struct {
	Authenticated bool
	UserID        string
	IsAdmin       bool
}

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu   sync.RWMutex
	sets map[string]cachedJWKS
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// revocations tracks signed-out token hashes until they expire. The
// session cache is lossy (admission and eviction may drop entries), so
// revocation lives in its own map: a sign-out must hold even when the
// provider call failed and the cache dropped the entry.
type revocations struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func (r *revocations) add(key string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for k, t := range r.until {
		if now.After(t) {
			delete(r.until, k)
		}
	}
	r.until[key] = now.Add(ttl)
}

func (r *revocations) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.until[key]
	return ok && time.Now().Before(t)
}

// Gate resolves whether a caller is authenticated and whether it holds
// the admin role. Every failure mode (no token, invalid token, provider
// error, malformed attributes) resolves to the unauthenticated session;
// the failure is logged, never surfaced to the caller.
type Gate struct {
	log       *zap.SugaredLogger
	prov      Provider
	issuer    string
	jwksURL   string
	jwks      *jwksCache
	adminExpr *jmespath.JMESPath
	cache     *ristretto.Cache[string, Session]
	revoked   *revocations
	ttl       time.Duration
}

const jwksTTL = 6 * time.Hour

func NewGate(cfg config.Config, prov Provider, log *zap.SugaredLogger) (*Gate, error) {
	expr, err := jmespath.Compile(attrExpr(cfg.AdminAttrPath))
	if err != nil {
		return nil, err
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, Session]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Gate{
		log:       log,
		prov:      prov,
		issuer:    strings.TrimRight(cfg.Issuer, "/"),
		jwksURL:   cfg.JWKSURL,
		jwks:      &jwksCache{},
		adminExpr: expr,
		cache:     cache,
		revoked:   &revocations{until: map[string]time.Time{}},
		ttl:       cfg.SessionCacheTTL,
	}, nil
}

// attrExpr turns a bare attribute name (possibly carrying characters like
// ':' that JMESPath identifiers cannot hold unquoted) into a valid
// expression; anything already expression-shaped passes through.
func attrExpr(path string) string {
	if strings.ContainsAny(path, ".[|&\"") {
		return path
	}
	return strconv.Quote(path)
}

// Resolve maps an access token to a Session. Results are cached briefly
// per token so repeated requests in a session avoid the provider round
// trip. A successful interactive sign-in calls Resolve with the fresh
// token before any protected handler runs.
func (g *Gate) Resolve(ctx context.Context, accessToken string) Session {
	if strings.TrimSpace(accessToken) == "" {
		return Session{}
	}
	key := tokenKey(accessToken)
	if g.revoked.has(key) {
		return Session{}
	}
	if s, ok := g.cache.Get(key); ok {
		return s
	}

	if g.issuer != "" && g.jwksURL != "" {
		set, err := g.jwks.get(ctx, g.jwksURL, jwksTTL)
		if err != nil {
			g.log.Errorw("jwks fetch", "err", err)
			return Session{}
		}
		if _, err := jwt.Parse([]byte(accessToken),
			jwt.WithKeySet(set), jwt.WithIssuer(g.issuer), jwt.WithValidate(true), jwt.WithVerify(true)); err != nil {
			g.log.Warnw("token rejected", "err", err)
			return Session{}
		}
	}

	principal, err := g.prov.CurrentUser(ctx, accessToken)
	if err != nil {
		g.log.Warnw("current user", "err", err)
		return Session{}
	}

	sess := Session{
		Authenticated: true,
		UserID:        principal.LoginID,
		IsAdmin:       g.isAdmin(principal.Attributes),
	}
	g.cache.SetWithTTL(key, sess, 1, g.ttl)
	g.cache.Wait()
	return sess
}

// isAdmin is true iff the configured attribute is the literal string "1".
func (g *Gate) isAdmin(attrs map[string]string) bool {
	doc := make(map[string]any, len(attrs))
	for k, v := range attrs {
		doc[k] = v
	}
	got, err := g.adminExpr.Search(doc)
	if err != nil {
		g.log.Warnw("admin attribute lookup", "err", err)
		return false
	}
	s, ok := got.(string)
	return ok && s == "1"
}

// revokeTTL outlives any plausible access-token lifetime.
const revokeTTL = 12 * time.Hour

// SignOut tears the local session down first: the token is revoked and
// the cached session dropped before the provider round trip, so
// requests racing the remote call already resolve unauthenticated, and
// stay rejected even if the provider sign-out fails. A provider failure
// is logged and swallowed; the local teardown is the source of truth.
func (g *Gate) SignOut(ctx context.Context, accessToken string) {
	key := tokenKey(accessToken)
	g.revoked.add(key, revokeTTL)
	g.cache.Del(key)
	if err := g.prov.SignOut(ctx, accessToken); err != nil {
		g.log.Errorw("provider sign-out", "err", err)
	}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
