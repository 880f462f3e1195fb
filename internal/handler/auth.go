package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tour-ops-dashboard/internal/repository"
    "github.com/iliyamo/tour-ops-dashboard/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Users        UserStore
    JWTSecret    string
    AccessTTLMin int
}

func NewAuthHandler(users UserStore, jwtSecret string, accessTTLMin int) *AuthHandler {
    return &AuthHandler{Users: users, JWTSecret: jwtSecret, AccessTTLMin: accessTTLMin}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}

type authResp struct {
    User   userPart  `json:"user"`
    Access tokenPart `json:"access"`
}

// Login: verify credentials and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return writeError(c, err)
    }
    // same answer as a wrong password so emails cannot be probed
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
    }

    access, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, authResp{
        User:   userPart{ID: u.ID, Email: u.Email, Role: u.Role},
        Access: tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Me returns the authenticated operator.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    u, err := h.Users.GetByID(c.Request().Context(), uid)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}
