package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Claims holds the JWT payload. Anonymous marks guest tokens, which carry
// a generated subject instead of a persisted user ID.
type Claims struct {
	UserID    string `json:"user_id"`
	Anonymous bool   `json:"anon,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the result of verifying a handshake token: the collaborator
// contract for the session orchestrator. A nil-equivalent (empty) UserID
// with IsAnonymous set means the player is a guest and may still play.
type Identity struct {
	UserID      string
	IsAnonymous bool
}

// Guest returns the identity used when no valid token is presented.
func Guest() Identity {
	return Identity{IsAnonymous: true}
}

// JWTManager handles token creation and validation.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	guestExpiry   time.Duration
}

// NewJWTManager creates a JWTManager with the given secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  15 * time.Minute,
		refreshExpiry: 7 * 24 * time.Hour,
		guestExpiry:   24 * time.Hour,
	}
}

func (m *JWTManager) sign(userID string, anonymous bool, expiry time.Duration) (string, error) {
	claims := &Claims{
		UserID:    userID,
		Anonymous: anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GenerateAccessToken creates a short-lived access token for the given user.
func (m *JWTManager) GenerateAccessToken(userID string) (string, error) {
	return m.sign(userID, false, m.accessExpiry)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.sign(userID, false, m.refreshExpiry)
}

// GenerateGuestToken creates a day-long token for an anonymous player,
// with a fresh random subject.
func (m *JWTManager) GenerateGuestToken() (string, error) {
	return m.sign("guest-"+uuid.NewString(), true, m.guestExpiry)
}

// ValidateToken parses and validates a JWT string, returning the claims.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyHandshake resolves a WebSocket handshake token to an Identity.
// Missing or invalid tokens degrade to a guest identity instead of
// rejecting the connection: guests are allowed to play.
func (m *JWTManager) VerifyHandshake(tokenStr string) Identity {
	if tokenStr == "" {
		return Guest()
	}
	claims, err := m.ValidateToken(tokenStr)
	if err != nil {
		return Guest()
	}
	if claims.Anonymous {
		return Identity{UserID: "", IsAnonymous: true}
	}
	return Identity{UserID: claims.UserID}
}

// TokenPair holds an access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// GenerateTokenPair creates both tokens for a user.
func (m *JWTManager) GenerateTokenPair(userID string) (*TokenPair, error) {
	access, err := m.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := m.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(m.accessExpiry.Seconds()),
	}, nil
}
