package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"kolnexus/pkg/config"
)

type fakeProvider struct {
	principal    Principal
	userErr      error
	signOutErr   error
	userCalls    int
	signOutCalls int
}

func (f *fakeProvider) SignIn(ctx context.Context, username, password string) (SignInResult, error) {
	return SignInResult{SignedIn: true, AccessToken: "tok"}, nil
}

func (f *fakeProvider) CompleteNewPassword(ctx context.Context, username, newPassword, session string) (SignInResult, error) {
	return SignInResult{SignedIn: true, AccessToken: "tok"}, nil
}

func (f *fakeProvider) CurrentUser(ctx context.Context, accessToken string) (Principal, error) {
	f.userCalls++
	if f.userErr != nil {
		return Principal{}, f.userErr
	}
	return f.principal, nil
}

func (f *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) ResetPassword(ctx context.Context, username string) error { return nil }

func (f *fakeProvider) ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error {
	return nil
}

func testGate(t *testing.T, prov Provider) *Gate {
	t.Helper()
	cfg := config.Config{
		AdminAttrPath:   "custom:admin",
		SessionCacheTTL: time.Minute,
	}
	g, err := NewGate(cfg, prov, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestResolveAdminAttribute(t *testing.T) {
	cases := []struct {
		value string
		admin bool
	}{
		{"1", true},
		{"0", false},
		{"true", false},
		{"yes", false},
		{"", false},
		{" 1", false},
	}
	for _, c := range cases {
		prov := &fakeProvider{principal: Principal{
			LoginID:    "u1",
			Attributes: map[string]string{"custom:admin": c.value},
		}}
		sess := testGate(t, prov).Resolve(context.Background(), "token-"+c.value)
		if !sess.Authenticated {
			t.Fatalf("attr %q: not authenticated", c.value)
		}
		if sess.IsAdmin != c.admin {
			t.Errorf("attr %q: IsAdmin = %v, want %v", c.value, sess.IsAdmin, c.admin)
		}
	}
}

func TestResolveMissingAttributeIsNotAdmin(t *testing.T) {
	prov := &fakeProvider{principal: Principal{LoginID: "u1", Attributes: map[string]string{}}}
	sess := testGate(t, prov).Resolve(context.Background(), "tok")
	if !sess.Authenticated || sess.IsAdmin {
		t.Fatalf("session = %+v, want authenticated non-admin", sess)
	}
}

func TestResolveEmptyToken(t *testing.T) {
	prov := &fakeProvider{}
	sess := testGate(t, prov).Resolve(context.Background(), "  ")
	if sess.Authenticated {
		t.Fatal("blank token resolved authenticated")
	}
	if prov.userCalls != 0 {
		t.Fatal("blank token reached the provider")
	}
}

func TestResolveProviderFailure(t *testing.T) {
	prov := &fakeProvider{userErr: errors.New("idp down")}
	sess := testGate(t, prov).Resolve(context.Background(), "tok")
	if sess != (Session{}) {
		t.Fatalf("session = %+v, want zero", sess)
	}
}

func TestResolveCachesPerToken(t *testing.T) {
	prov := &fakeProvider{principal: Principal{LoginID: "u1"}}
	g := testGate(t, prov)

	first := g.Resolve(context.Background(), "tok")
	second := g.Resolve(context.Background(), "tok")
	if first != second {
		t.Fatalf("cached resolve differs: %+v vs %+v", first, second)
	}
	if prov.userCalls != 1 {
		t.Fatalf("provider called %d times, want 1", prov.userCalls)
	}
}

func TestSignOutRevokesLocallyEvenWhenProviderFails(t *testing.T) {
	prov := &fakeProvider{
		principal:  Principal{LoginID: "u1"},
		signOutErr: errors.New("network flake"),
	}
	g := testGate(t, prov)

	if sess := g.Resolve(context.Background(), "tok"); !sess.Authenticated {
		t.Fatal("setup: resolve failed")
	}

	g.SignOut(context.Background(), "tok")
	if prov.signOutCalls != 1 {
		t.Fatalf("provider SignOut called %d times", prov.signOutCalls)
	}

	// The token must stay rejected without another provider round trip.
	calls := prov.userCalls
	if sess := g.Resolve(context.Background(), "tok"); sess.Authenticated {
		t.Fatal("revoked token resolved authenticated")
	}
	if prov.userCalls != calls {
		t.Fatal("revoked token reached the provider again")
	}
}

func TestSignOutRevocationSurvivesCacheEviction(t *testing.T) {
	prov := &fakeProvider{
		principal:  Principal{LoginID: "u1"},
		signOutErr: errors.New("network flake"),
	}
	g := testGate(t, prov)

	if sess := g.Resolve(context.Background(), "tok"); !sess.Authenticated {
		t.Fatal("setup: resolve failed")
	}
	g.SignOut(context.Background(), "tok")

	// The session cache may drop entries at any time; revocation must not
	// depend on it.
	g.cache.Clear()

	calls := prov.userCalls
	if sess := g.Resolve(context.Background(), "tok"); sess.Authenticated {
		t.Fatal("revoked token resolved authenticated after cache eviction")
	}
	if prov.userCalls != calls {
		t.Fatal("revoked token reached the provider")
	}
}

func TestRevocationsExpire(t *testing.T) {
	r := &revocations{until: map[string]time.Time{}}
	r.add("k1", -time.Second)
	if r.has("k1") {
		t.Fatal("expired revocation still active")
	}
	r.add("k2", time.Minute)
	if !r.has("k2") {
		t.Fatal("live revocation not found")
	}
	// Adding sweeps expired entries.
	if _, ok := r.until["k1"]; ok {
		t.Fatal("expired entry not swept")
	}
}

func TestAttrExpr(t *testing.T) {
	cases := map[string]string{
		"custom:admin":   `"custom:admin"`,
		"role":           `"role"`,
		`"custom:admin"`: `"custom:admin"`,
		"user.role":      "user.role",
	}
	for in, want := range cases {
		if got := attrExpr(in); got != want {
			t.Errorf("attrExpr(%q) = %q, want %q", in, got, want)
		}
	}
}
