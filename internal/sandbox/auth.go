package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account. An already existing username is reported as
// a validation error by the backend.
func (c *Client) Register(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(registerRequest{Username: username, Password: password, Role: domain.DefaultRole})
	if err != nil {
		return apperrors.InternalError("failed to encode registration", err)
	}

	_, err = c.do(ctx, request{
		operation:   "register",
		method:      http.MethodPost,
		url:         c.endpoint("/auth/register", nil),
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	return err
}

// Login exchanges credentials for an access token using the OAuth2 password form.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	res, err := c.do(ctx, request{
		operation:   "login",
		method:      http.MethodPost,
		url:         c.endpoint("/auth/login", nil),
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return "", err
	}

	token, err := decode[tokenResponse]("login", res)
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", apperrors.AuthError("backend returned no access token", nil)
	}
	return token.AccessToken, nil
}
