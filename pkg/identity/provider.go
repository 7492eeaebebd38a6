package identity

import "context"

// Principal is the signed-in user as reported by the identity provider.
type Principal struct {
	LoginID    string
	Attributes map[string]string
}

// SignInResult carries the outcome of an interactive sign-in. When the
// provider demands a new password, NextStep is ChallengeNewPassword and
// ChallengeSession must be echoed back via CompleteNewPassword.
type SignInResult struct {
	SignedIn         bool
	NextStep         string
	AccessToken      string
	IDToken          string
	RefreshToken     string
	ChallengeSession string
}

const ChallengeNewPassword = "NEW_PASSWORD_REQUIRED"

// Provider is the hosted identity service. Only these shapes are
// consumed; everything else about the provider is opaque.
type Provider interface {
	SignIn(ctx context.Context, username, password string) (SignInResult, error)
	CompleteNewPassword(ctx context.Context, username, newPassword, session string) (SignInResult, error)
	CurrentUser(ctx context.Context, accessToken string) (Principal, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, username string) error
	ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error
}
