package connection

import (
	"context"
	"errors"
	"net/http"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

// AuthClient implements the remote authentication calls.
type AuthClient struct {
	http *HTTPClient
}

// NewAuthClient creates an AuthClient.
func NewAuthClient(c *HTTPClient) *AuthClient {
	return &AuthClient{http: c}
}

// Login posts credentials to /auth/login.
func (a *AuthClient) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.LoginResponse] {
	var reply loginWire
	if err := a.http.Call(ctx, "login", http.MethodPost, "/auth/login", "", creds, &reply); err != nil {
		return domain.Fail[domain.LoginResponse](err)
	}
	return domain.Ok(reply.toDomain())
}

// Register posts a registration to /auth/register. It succeeds on any 2xx
// status unless the body is a JSON object carrying success:false.
func (a *AuthClient) Register(ctx context.Context, req domain.RegisterRequest) domain.Result[domain.Empty] {
	var body []byte
	if err := a.http.Call(ctx, "register", http.MethodPost, "/auth/register", "", req, &body); err != nil {
		return domain.Fail[domain.Empty](err)
	}
	flag, ok := parseSuccessFlag(body)
	if ok && flag.Success != nil && !*flag.Success {
		err := domain.ErrRemote
		if flag.Message != "" {
			err = err.WithDetails(flag.Message)
		}
		return domain.Fail[domain.Empty](err)
	}
	return domain.Ok(domain.Empty{})
}

// CurrentUser fetches /users/me with token.
func (a *AuthClient) CurrentUser(ctx context.Context, token string) domain.Result[*domain.User] {
	var reply userWire
	if err := a.http.Call(ctx, "current_user", http.MethodGet, "/users/me", token, nil, &reply); err != nil {
		return domain.Fail[*domain.User](err)
	}
	if reply.empty() {
		return domain.Fail[*domain.User](domain.ErrBadResponse.WithCause(errors.New("empty user object")))
	}
	return domain.Ok(reply.toDomain())
}

// Refresh exchanges a refresh token at /auth/refreshtoken.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) domain.Result[domain.TokenPair] {
	in := map[string]string{"refreshToken": refreshToken}
	var reply struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := a.http.Call(ctx, "refresh", http.MethodPost, "/auth/refreshtoken", "", in, &reply); err != nil {
		return domain.Fail[domain.TokenPair](err)
	}
	if reply.AccessToken == "" {
		return domain.Fail[domain.TokenPair](domain.ErrBadResponse.WithCause(errors.New("reply carried no access token")))
	}
	return domain.Ok(domain.TokenPair{AccessToken: reply.AccessToken, RefreshToken: reply.RefreshToken})
}

// ForgotPassword asks the backend to mail a reset link to email.
func (a *AuthClient) ForgotPassword(ctx context.Context, email string) domain.Result[domain.Empty] {
	in := map[string]string{"email": email}
	if err := a.http.Call(ctx, "forgot_password", http.MethodPost, "/auth/forgot-password", "", in, nil); err != nil {
		return domain.Fail[domain.Empty](err)
	}
	return domain.Ok(domain.Empty{})
}

// ResetPassword sets a new password using a mailed reset token.
func (a *AuthClient) ResetPassword(ctx context.Context, resetToken, newPassword string) domain.Result[domain.Empty] {
	in := map[string]string{"token": resetToken, "newPassword": newPassword}
	if err := a.http.Call(ctx, "reset_password", http.MethodPost, "/auth/reset-password", "", in, nil); err != nil {
		return domain.Fail[domain.Empty](err)
	}
	return domain.Ok(domain.Empty{})
}
