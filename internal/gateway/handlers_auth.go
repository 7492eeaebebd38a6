package gateway

import (
	"encoding/json"
	"net/http"

	"kolnexus/pkg/identity"
	"kolnexus/pkg/middleware"
	"kolnexus/pkg/problems"
)

type sessionBody struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

type signInResponse struct {
	AccessToken  string       `json:"accessToken,omitempty"`
	IDToken      string       `json:"idToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	Challenge    string       `json:"challenge,omitempty"`
	Session      string       `json:"session,omitempty"`
	Principal    *sessionBody `json:"principal,omitempty"`
}

func (a *App) signIn(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.Username == "" || b.Password == "" {
		problems.Write(w, http.StatusBadRequest, "bad-request", "username and password are required", "")
		return
	}
	res, err := a.prov.SignIn(r.Context(), b.Username, b.Password)
	if err != nil {
		a.log.Warnw("sign-in failed", "user", b.Username, "err", err)
		problems.Write(w, http.StatusUnauthorized, "sign-in-failed", "Sign-in failed", err.Error())
		return
	}
	a.finishSignIn(w, r, res)
}

func (a *App) completeNewPassword(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Username    string `json:"username"`
		NewPassword string `json:"newPassword"`
		Session     string `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.Username == "" || b.NewPassword == "" || b.Session == "" {
		problems.Write(w, http.StatusBadRequest, "bad-request", "username, newPassword and session are required", "")
		return
	}
	res, err := a.prov.CompleteNewPassword(r.Context(), b.Username, b.NewPassword, b.Session)
	if err != nil {
		a.log.Warnw("new-password challenge failed", "user", b.Username, "err", err)
		problems.Write(w, http.StatusUnauthorized, "sign-in-failed", "Sign-in failed", err.Error())
		return
	}
	a.finishSignIn(w, r, res)
}

// finishSignIn resolves the fresh token through the gate before replying,
// so role and auth state reflect the just-authenticated principal before
// any protected call is made with it.
func (a *App) finishSignIn(w http.ResponseWriter, r *http.Request, res identity.SignInResult) {
	if res.NextStep == identity.ChallengeNewPassword {
		writeJSON(w, signInResponse{Challenge: res.NextStep, Session: res.ChallengeSession}, http.StatusOK)
		return
	}
	if !res.SignedIn {
		problems.Write(w, http.StatusUnauthorized, "sign-in-failed", "Sign-in failed", res.NextStep)
		return
	}
	sess := a.gate.Resolve(r.Context(), res.AccessToken)
	if !sess.Authenticated {
		problems.Write(w, http.StatusUnauthorized, "sign-in-failed", "Sign-in failed", "")
		return
	}
	writeJSON(w, signInResponse{
		AccessToken:  res.AccessToken,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		Principal:    &sessionBody{UserID: sess.UserID, IsAdmin: sess.IsAdmin},
	}, http.StatusOK)
}

// signOut tears down all local state before the provider round trip: the
// tenant selection and the cached session go first, so a protected call
// racing the remote sign-out is already rejected locally.
func (a *App) signOut(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	a.mgr.Clear(r.Context(), sess.UserID)
	a.gate.SignOut(r.Context(), middleware.TokenFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) getSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	writeJSON(w, sessionBody{UserID: sess.UserID, IsAdmin: sess.IsAdmin}, http.StatusOK)
}

func (a *App) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.Username == "" {
		problems.Write(w, http.StatusBadRequest, "bad-request", "username is required", "")
		return
	}
	if err := a.prov.ResetPassword(r.Context(), b.Username); err != nil {
		a.log.Warnw("reset password", "user", b.Username, "err", err)
		problems.Write(w, http.StatusBadRequest, "reset-failed", "Password reset failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) confirmForgotPassword(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Username    string `json:"username"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.Username == "" || b.Code == "" || b.NewPassword == "" {
		problems.Write(w, http.StatusBadRequest, "bad-request", "username, code and newPassword are required", "")
		return
	}
	if err := a.prov.ConfirmResetPassword(r.Context(), b.Username, b.Code, b.NewPassword); err != nil {
		a.log.Warnw("confirm reset password", "user", b.Username, "err", err)
		problems.Write(w, http.StatusBadRequest, "reset-failed", "Password reset failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
