// pkg/identity/cognito.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// cognitoProvider speaks the Cognito identity-provider JSON protocol
// (x-amz-json-1.1 with an X-Amz-Target operation header). Only the
// operations the gateway needs are implemented.
type cognitoProvider struct {
	endpoint string
	clientID string
	http     *http.Client
}

func NewCognitoProvider(endpoint, clientID string) Provider {
	return &cognitoProvider{
		endpoint: endpoint,
		clientID: clientID,
		http:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

const targetPrefix = "AWSCognitoIdentityProviderService."

type apiError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return e.Type
}

func (p *cognitoProvider) call(ctx context.Context, op string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", targetPrefix+op)
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Type != "" {
			return &ae
		}
		return fmt.Errorf("%s: status %d", op, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

type authResponse struct {
	AuthenticationResult struct {
		AccessToken  string
		IdToken      string
		RefreshToken string
	}
	ChallengeName string
	Session       string
}

func (r authResponse) result() SignInResult {
	out := SignInResult{
		NextStep:         r.ChallengeName,
		AccessToken:      r.AuthenticationResult.AccessToken,
		IDToken:          r.AuthenticationResult.IdToken,
		RefreshToken:     r.AuthenticationResult.RefreshToken,
		ChallengeSession: r.Session,
	}
	out.SignedIn = out.AccessToken != "" && r.ChallengeName == ""
	return out
}

func (p *cognitoProvider) SignIn(ctx context.Context, username, password string) (SignInResult, error) {
	var resp authResponse
	err := p.call(ctx, "InitiateAuth", map[string]any{
		"AuthFlow": "USER_PASSWORD_AUTH",
		"ClientId": p.clientID,
		"AuthParameters": map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	}, &resp)
	if err != nil {
		return SignInResult{}, err
	}
	return resp.result(), nil
}

func (p *cognitoProvider) CompleteNewPassword(ctx context.Context, username, newPassword, session string) (SignInResult, error) {
	var resp authResponse
	err := p.call(ctx, "RespondToAuthChallenge", map[string]any{
		"ChallengeName": ChallengeNewPassword,
		"ClientId":      p.clientID,
		"Session":       session,
		"ChallengeResponses": map[string]string{
			"USERNAME":     username,
			"NEW_PASSWORD": newPassword,
		},
	}, &resp)
	if err != nil {
		return SignInResult{}, err
	}
	return resp.result(), nil
}

func (p *cognitoProvider) CurrentUser(ctx context.Context, accessToken string) (Principal, error) {
	var resp struct {
		Username       string
		UserAttributes []struct{ Name, Value string }
	}
	if err := p.call(ctx, "GetUser", map[string]string{"AccessToken": accessToken}, &resp); err != nil {
		return Principal{}, err
	}
	attrs := make(map[string]string, len(resp.UserAttributes))
	for _, a := range resp.UserAttributes {
		attrs[a.Name] = a.Value
	}
	return Principal{LoginID: resp.Username, Attributes: attrs}, nil
}

func (p *cognitoProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.call(ctx, "GlobalSignOut", map[string]string{"AccessToken": accessToken}, nil)
}

func (p *cognitoProvider) ResetPassword(ctx context.Context, username string) error {
	return p.call(ctx, "ForgotPassword", map[string]string{
		"ClientId": p.clientID,
		"Username": username,
	}, nil)
}

func (p *cognitoProvider) ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error {
	return p.call(ctx, "ConfirmForgotPassword", map[string]string{
		"ClientId":         p.clientID,
		"Username":         username,
		"ConfirmationCode": code,
		"Password":         newPassword,
	}, nil)
}
