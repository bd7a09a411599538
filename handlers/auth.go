package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/models"
	"github.com/aircnc/aircnc-server/internal/users"
	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/aircnc/aircnc-server/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserService is what the handlers need from users.Service.
type UserService interface {
	Create(ctx context.Context, req users.CreateUserRequest) (models.User, error)
	Verify(ctx context.Context, email, password string) (models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
}

// TokenService issues, verifies and revokes access tokens (see tokens.Issuer).
type TokenService interface {
	middleware.Verifier
	Issue(userID string) (string, time.Time, error)
	Revoke(ctx context.Context, raw string) error
}

// AuthHandler holds dependencies
type AuthHandler struct {
	users        UserService
	tokens       TokenService
	secureCookie bool
	log          *zap.SugaredLogger
}

// NewAuthHandler wires the handlers. secureCookie marks the Authentication cookie Secure.
func NewAuthHandler(u UserService, t TokenService, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: u, tokens: t, secureCookie: secureCookie, log: logger.Named("AuthHandler")}
}

// Register mounts /users and /auth routes.
func (h *AuthHandler) Register(rg gin.IRouter) {
	authn := middleware.AuthMiddleware(h.tokens)

	u := rg.Group("/users")
	u.POST("", h.CreateUser)
	u.GET("", authn, h.CurrentUser)

	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/logout", authn, h.Logout)
	a.GET("/authenticate", authn, h.Authenticate)
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req users.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithBindError(c, err)
		return
	}
	u, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) CurrentUser(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Login checks credentials, sets the Authentication cookie and returns the user and token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithBindError(c, err)
		return
	}
	u, err := h.users.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, exp, err := h.tokens.Issue(u.ID.Hex())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, token, int(time.Until(exp).Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

// Logout revokes the presented token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.tokens.Revoke(c.Request.Context(), middleware.RawToken(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Authenticate resolves the token to its user. Other services call it to authenticate
// their own requests.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		h.log.Errorw("auth request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
