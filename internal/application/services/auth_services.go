package services

import (
	"fmt"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
)

const editorRole = "editor"

// AuthService handles editor login and JWT validation. With no password
// hash configured the editor is open and every request is allowed.
type AuthService struct {
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
}

// NewAuthService creates a new authentication service. An empty jwtSecret
// is replaced by a random one, so tokens do not survive a restart.
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, passwordHash, jwtSecret string, tokenTTL time.Duration) (*AuthService, error) {
	if passwordHash != "" && jwtSecret == "" {
		key, err := security.GenerateSecureKey(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		jwtSecret = key
		logger.Auth().Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		logger:       logger,
		perfTracker:  perfTracker,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}, nil
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Enabled reports whether requests must carry a token.
func (a *AuthService) Enabled() bool { return a.passwordHash != "" }

// Login checks the editor password and issues a token.
func (a *AuthService) Login(password string) *AuthResult {
	marker := a.perfTracker.StartOperation("auth:login", "")
	defer a.perfTracker.CompleteOperation(marker)

	if !a.Enabled() {
		return &AuthResult{Success: false, Error: "Authentication is not enabled"}
	}
	if !security.CheckPassword(a.passwordHash, password) {
		marker.SetSuccess(false)
		a.logger.Auth().Warn("Editor login failed")
		return &AuthResult{Success: false, Error: "Invalid credentials"}
	}

	token, err := security.GenerateEditorToken(editorRole, editorRole, a.jwtSecret, a.tokenTTL)
	if err != nil {
		marker.SetError(err)
		a.logger.Auth().Error("Token generation failed", "error", err.Error())
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}
	a.logger.Auth().Info("Editor logged in")
	return &AuthResult{Token: token, Role: editorRole, ExpiresAt: time.Now().UTC().Add(a.tokenTTL), Success: true}
}

// ValidateToken returns the claims of a valid editor token.
func (a *AuthService) ValidateToken(token string) (*security.EditorClaims, error) {
	if token == "" {
		return nil, security.ErrInvalidToken
	}
	return security.ParseEditorToken(token, a.jwtSecret)
}
