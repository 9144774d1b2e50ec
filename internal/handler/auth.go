package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-application-tracker/internal/config"
	"github.com/iliyamo/job-application-tracker/internal/model"
	"github.com/iliyamo/job-application-tracker/internal/repository"
	"github.com/iliyamo/job-application-tracker/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyTwoFactorReq struct {
	Token  string `json:"token"`
	Secret string `json:"secret"` // optional override; takes precedence over the stored secret
}

type authResp struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// Register: validate, create user, return a bearer token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	email, verrs := model.ValidateCredentials(req.Email, req.Password)
	if len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "details": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create user"})
	}
	u, err := h.Users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create user"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not issue token"})
	}
	return c.JSON(http.StatusCreated, authResp{Token: access.Token, User: u.Public()})
}

// Login: verify credentials and return a fresh bearer token.  Unknown email
// and wrong password produce the same undifferentiated response so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	email, verrs := model.ValidateCredentials(req.Email, req.Password)
	if len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "details": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not issue token"})
	}
	return c.JSON(http.StatusOK, authResp{Token: access.Token, User: u.Public()})
}

// SetupTwoFactor generates a fresh TOTP secret for the authenticated user,
// overwriting any prior secret, and returns it together with a scannable QR
// image of the provisioning URI.
func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}

	key, err := utils.NewTwoFactorKey(h.Cfg.TOTPIssuer, u.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not generate secret"})
	}
	if err := h.Users.SetTwoFactorSecret(ctx, u.ID, key.Secret); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not save secret"})
	}

	return c.JSON(http.StatusOK, echo.Map{"secret": key.Secret, "qr": key.QRImage})
}

// VerifyTwoFactor checks a 6-digit TOTP code against the effective secret.
// A caller-supplied secret takes precedence over the stored one; success is
// not persisted anywhere.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var req verifyTwoFactorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	var verrs model.ValidationErrors
	if len(req.Token) != 6 {
		verrs = verrs.Add("token", "token must be 6 characters")
	}
	if len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "details": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}

	// Effective secret: explicit override first, stored secret otherwise.
	secret := req.Secret
	if secret == "" && err == nil && u.TwoFactorSecret != nil {
		secret = *u.TwoFactorSecret
	}
	if secret == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "2FA not configured"})
	}

	if !utils.VerifyTOTP(req.Token, secret) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "2FA verified"})
}
