package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"axiapac.com/timetrack/model"
)

const (
	pathLogin  = "/auth/login"
	pathLogout = "/auth/logout"
	pathMe     = "/auth/me"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string
	User  model.UserProfile
}

// loginPayload accepts both token spellings the backend has used.
type loginPayload struct {
	Token       string             `json:"token"`
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	User        *model.UserProfile `json:"user"`
}

type AuthEndpoint struct {
	transport *Transport
}

// Login exchanges credentials for a token and profile. It does not start a
// session; the caller decides what to persist.
func (ep *AuthEndpoint) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	resp, err := ep.transport.Post(ctx, pathLogin, creds, nil)
	if err != nil {
		return nil, err
	}

	payload, err := decode[loginPayload](http.MethodPost, pathLogin, resp)
	if err != nil {
		return nil, err
	}

	token := payload.Token
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" {
		return nil, &Error{Kind: KindDecode, Method: http.MethodPost, Path: pathLogin, Message: unexpectedMessage, Err: errors.New("login response carries no token")}
	}

	if payload.User != nil {
		return &LoginResult{Token: token, User: *payload.User}, nil
	}

	// older backends only return the token
	resp, err = ep.transport.getWithToken(ctx, pathMe, token)
	if err != nil {
		return nil, err
	}
	profile, err := decode[model.UserProfile](http.MethodGet, pathMe, resp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: profile}, nil
}

// Me fetches the caller's profile, including today's next action.
func (ep *AuthEndpoint) Me(ctx context.Context) (*model.UserProfile, error) {
	resp, err := ep.transport.Get(ctx, pathMe, nil)
	if err != nil {
		return nil, err
	}
	profile, err := decode[model.UserProfile](http.MethodGet, pathMe, resp)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout notifies the backend and always clears the local session, even
// when the remote call fails. The remote error is still returned.
func (ep *AuthEndpoint) Logout(ctx context.Context) error {
	resp, err := ep.transport.Post(ctx, pathLogout, nil, nil)
	if err == nil {
		err = expectSuccess(http.MethodPost, pathLogout, resp)
	}

	if s := ep.transport.session; s != nil {
		if endErr := s.End(context.WithoutCancel(ctx), "logout"); endErr != nil && err == nil {
			err = fmt.Errorf("clear session: %w", endErr)
		}
	}
	return err
}
