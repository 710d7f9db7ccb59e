package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/config"
)

const (
	SessionCookie  = "auth_token"
	LoginPath      = "/api/v1/auth/login"
	defaultSession = 12 * time.Hour
)

var ErrInvalidCode = errors.New("invalid authentication code")

type AuthService struct {
	logger     *zap.Logger
	totpSecret string
	ttl        time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		logger:     logger,
		totpSecret: cfg.TOTPSecret,
		ttl:        config.Duration(cfg.SessionTTL, defaultSession),
		sessions:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// GenerateKey creates a new TOTP key for enrolling an authenticator app.
func GenerateKey(issuer, accountName string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	return key, nil
}

func (a *AuthService) ValidateCode(code string) bool {
	valid := totp.Validate(code, a.totpSecret)
	if valid {
		a.logger.Info("TOTP code validation successful")
	} else {
		a.logger.Warn("TOTP code validation failed")
	}
	return valid
}

// Login exchanges a valid TOTP code for a session token.
func (a *AuthService) Login(code string) (string, time.Time, error) {
	if !a.ValidateCode(strings.TrimSpace(code)) {
		return "", time.Time{}, ErrInvalidCode
	}
	token, expires := a.CreateSession()
	return token, expires, nil
}

func (a *AuthService) CreateSession() (string, time.Time) {
	token := uuid.NewString()
	expires := a.now().Add(a.ttl)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[token] = expires
	return token, expires
}

// isValidSession checks the token and evicts it once expired.
func (a *AuthService) isValidSession(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	expires, ok := a.sessions[token]
	if !ok {
		return false
	}
	if !a.now().Before(expires) {
		delete(a.sessions, token)
		return false
	}
	return true
}

func (a *AuthService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == LoginPath {
			c.Next()
			return
		}

		token := sessionToken(c)
		if token == "" || !a.isValidSession(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		c.Next()
	}
}

// sessionToken reads the session cookie, falling back to a bearer header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
