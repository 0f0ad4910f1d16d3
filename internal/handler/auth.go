package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/config"
	"github.com/fleetshare/fleetshare/internal/middleware"
	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Store  *repository.Store
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, store *repository.Store, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Store: store, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Name     string  `json:"name"`
	NIF      int     `json:"nif"`
	Email    string  `json:"email"`
	Address  string  `json:"address"`
	Password string  `json:"password"`
	Role     string  `json:"role"` // CLIENT | OWNER
	X        float64 `json:"x"`    // starting position, clients only
	Y        float64 `json:"y"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issuePair signs an access token and stores a fresh refresh token.
func (h *AuthHandler) issuePair(email, role string) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, email, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	h.Tokens.StoreRefresh(utils.HashRefreshRaw(refresh.Raw), email, role, refresh.Exp)
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil // raw back to the caller
}

// Register: create a client or owner account and return tokens
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != middleware.RoleOwner && role != middleware.RoleClient {
		role = middleware.RoleClient
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	user := model.User{
		Name:         req.Name,
		NIF:          req.NIF,
		Email:        req.Email,
		Address:      req.Address,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		Rating:       model.DefaultRating,
	}

	if role == middleware.RoleOwner {
		err = h.Store.AddOwner(&model.Owner{User: user})
	} else {
		err = h.Store.AddClient(&model.Client{User: user, Position: model.Point{X: req.X, Y: req.Y}})
	}
	if err != nil {
		return respondError(c, err)
	}

	access, refresh, err := h.issuePair(req.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{Name: req.Name, Email: req.Email, Role: role},
		Access:  access,
		Refresh: refresh,
	})
}

// lookupAccount resolves an email to the stored credentials and role,
// checking clients first and owners second.
func (h *AuthHandler) lookupAccount(email string) (name, passwordHash, role string, err error) {
	if cl, err := h.Store.GetClient(email); err == nil {
		return cl.Name, cl.PasswordHash, middleware.RoleClient, nil
	}
	if ow, err := h.Store.GetOwner(email); err == nil {
		return ow.Name, ow.PasswordHash, middleware.RoleOwner, nil
	}
	return "", "", "", repository.ErrInvalidCredentials
}

// Login: verify the password and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	name, hash, role, err := h.lookupAccount(req.Email)
	if err != nil || !utils.VerifyPassword(hash, req.Password) {
		// Same answer for unknown account and wrong password.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(req.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{Name: name, Email: req.Email, Role: role},
		Access:  access,
		Refresh: refresh,
	})
}

// Refresh: validate by hash, revoke the old token, issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	email, role, err := h.Tokens.ValidateRefresh(hash, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	h.Tokens.RevokeByHash(hash)

	name, _, _, err := h.lookupAccount(email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	access, refresh, err := h.issuePair(email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{Name: name, Email: email, Role: role},
		Access:  access,
		Refresh: refresh,
	})
}

// Logout: revoke one session when a refresh token is supplied, or every
// session of the authenticated account otherwise.  The route sits
// behind JWTAuth so the email claim is always present.
func (h *AuthHandler) Logout(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req refreshReq
	_ = c.Bind(&req) // absent body means revoke everything
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, _, err := h.Tokens.ValidateRefresh(hash, time.Now().UTC()); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		h.Tokens.RevokeByHash(hash)
		return c.NoContent(http.StatusNoContent)
	}

	h.Tokens.RevokeAllFor(email)
	return c.NoContent(http.StatusNoContent)
}

// Me: report the authenticated identity and its aggregate stats.
func (h *AuthHandler) Me(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	if role == middleware.RoleOwner {
		o, err := h.Store.GetOwner(email)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"name":   o.Name,
			"email":  o.Email,
			"role":   role,
			"rating": o.Rating,
			"rents":  o.PerformedRents(),
		})
	}

	cl, err := h.Store.GetClient(email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"name":          cl.Name,
		"email":         cl.Email,
		"role":          role,
		"rating":        cl.Rating,
		"rents":         cl.PerformedRents(),
		"travelled_kms": cl.TravelledKms(),
		"position":      cl.Position,
	})
}
