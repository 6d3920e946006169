package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/travel-reservations/internal/config"
    "github.com/iliyamo/travel-reservations/internal/middleware"
    "github.com/iliyamo/travel-reservations/internal/model"
    "github.com/iliyamo/travel-reservations/internal/service"
    "github.com/iliyamo/travel-reservations/internal/utils"
)

// AuthHandler issues and revokes tokens.  Registration always creates a
// CLIENT; administrators are seeded from configuration.
type AuthHandler struct {
    Cfg      config.Config
    Accounts Accounts
    Tokens   RefreshTokens
    Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, accounts Accounts, tokens RefreshTokens, log *zap.Logger) *AuthHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &AuthHandler{Cfg: cfg, Accounts: accounts, Tokens: tokens, Log: log}
}

// ----- DTOs -----

type registerReq struct {
    FullName string `json:"full_name" validate:"required,max=120"`
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type userPart struct {
    ID       uint64 `json:"id"`
    FullName string `json:"full_name"`
    Email    string `json:"email"`
    Role     string `json:"role"`
}

type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// issue creates an access/refresh pair for u and persists the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u *model.User) (authResp, error) {
    ctx, cancel := reqCtx(c)
    defer cancel()

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    userPart{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    }, nil
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Accounts.Register(ctx, req.FullName, req.Email, req.Password)
    if err != nil {
        return err
    }
    resp, err := h.issue(c, u)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Accounts.Authenticate(ctx, req.Email, req.Password)
    if errors.Is(err, service.ErrInvalidCredentials) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials", "code": "UNAUTHORIZED"})
    }
    if err != nil {
        return err
    }
    resp, err := h.issue(c, u)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /v1/auth/refresh: the presented refresh token is
// revoked and a new pair issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := bind(c, &req); err != nil {
        return err
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := reqCtx(c)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token", "code": "UNAUTHORIZED"})
    }
    u, err := h.Accounts.GetUser(ctx, userID)
    if err != nil || !u.Enabled {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token", "code": "UNAUTHORIZED"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return err
    }
    resp, err := h.issue(c, u)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /v1/auth/logout and revokes one refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := bind(c, &req); err != nil {
        return err
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := reqCtx(c)
    defer cancel()

    if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token", "code": "UNAUTHORIZED"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return err
    }
    return c.NoContent(http.StatusNoContent)
}

// LogoutAll handles POST /v1/logout: every session of the caller ends.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        return err
    }
    h.Log.Info("all sessions revoked", zap.Uint64("user_id", uid))
    return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    u, err := h.Accounts.GetUser(ctx, uid)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, userPart{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: middleware.Role(c)})
}
