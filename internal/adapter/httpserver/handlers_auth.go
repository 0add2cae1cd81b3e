package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	userKey = "user"

	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Could not validate credentials"
	msgUserExists         = "The user with this username already exists in the system."
	msgIncorrectLogin     = "Incorrect username or password"
)

var validRoles = map[string]bool{
	"Analyst": true,
	"Admin":   true,
	"Service": true,
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type userResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (b *backend) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body").SetInternal(err)
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username and password are required")
	}
	if req.Role == "" {
		req.Role = domain.DefaultRole
	}
	if !validRoles[req.Role] {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("unknown role %q", req.Role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.cfg.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "password is too long")
	}
	if err != nil {
		return apperrors.InternalError("failed to hash password", err)
	}

	user := userRecord{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
		CreatedAt:    b.clock.Now().UTC(),
	}
	if err := b.store.addUser(user); err != nil {
		if errors.Is(err, errUserExists) {
			return apperrors.ValidationError(msgUserExists).WithField("username", req.Username)
		}
		return apperrors.InternalError("failed to store user", err)
	}

	slog.InfoContext(c.Request().Context(), "User registered", "username", user.Username, "role", user.Role)
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (b *backend) handleLogin(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username and password are required")
	}

	user, ok := b.store.user(username)
	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return apperrors.ValidationError(msgIncorrectLogin)
	}

	token, err := b.issueToken(user.Username)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (b *backend) issueToken(username string) (string, error) {
	now := b.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.cfg.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (b *backend) parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return b.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(b.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// requireAuth resolves the bearer token to a registered user.
func (b *backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return unauthorized(c, msgNotAuthenticated, nil)
		}

		username, err := b.parseToken(raw)
		if err != nil {
			return unauthorized(c, msgInvalidCredentials, err)
		}

		user, ok := b.store.user(username)
		if !ok {
			return unauthorized(c, msgInvalidCredentials, nil)
		}

		c.Set("username", user.Username)
		c.Set(userKey, user)
		return next(c)
	}
}

func unauthorized(c echo.Context, msg string, cause error) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return apperrors.AuthError(msg, cause)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func toUserResponse(u userRecord) userResponse {
	resp := userResponse{
		UserID:    u.ID.String(),
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.Email != "" {
		email := u.Email
		resp.Email = &email
	}
	return resp
}
