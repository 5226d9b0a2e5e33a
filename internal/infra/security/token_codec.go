package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/Vinoddhakad18/go-architecture/internal/infra/config"
)

var (
	// ErrInvalidToken indicates the credential is malformed or its signature
	// does not verify.
	ErrInvalidToken = errors.New("security: invalid token")
	// ErrExpiredToken indicates the credential's expiry claim is in the past.
	ErrExpiredToken = errors.New("security: token expired")
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims carries the subject context embedded in both credential kinds.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair groups the two credentials issued together at login and rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenCodec creates and verifies signed, time-bounded credentials. Access
// and refresh tokens are signed with distinct HMAC secrets and carry distinct
// lifetimes. The codec is pure: it never touches the store.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenCodec validates the configured secrets and builds a codec.
func NewTokenCodec(cfg config.JWTSettings, issuer string) (*TokenCodec, error) {
	access := strings.TrimSpace(cfg.AccessSecret)
	refresh := strings.TrimSpace(cfg.RefreshSecret)
	if access == "" || refresh == "" {
		return nil, fmt.Errorf("jwt secrets are required")
	}
	if access == refresh {
		return nil, fmt.Errorf("access and refresh secrets must differ")
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}

	codec := &TokenCodec{
		accessSecret:  []byte(access),
		refreshSecret: []byte(refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        strings.TrimSpace(issuer),
	}
	codec.now = func() time.Time { return time.Now().UTC() }
	return codec, nil
}

// WithClock overrides the codec clock for deterministic tests.
func (c *TokenCodec) WithClock(clock func() time.Time) *TokenCodec {
	if clock != nil {
		c.now = clock
	}
	return c
}

// AccessTokenTTL returns the configured access credential lifetime.
func (c *TokenCodec) AccessTokenTTL() time.Duration { return c.accessTTL }

// RefreshTokenTTL returns the configured refresh credential lifetime. Fences
// use it as their lifetime so they outlive every credential they must reject.
func (c *TokenCodec) RefreshTokenTTL() time.Duration { return c.refreshTTL }

// IssuePair signs a fresh access and refresh credential for the subject.
func (c *TokenCodec) IssuePair(userID, email, role string) (TokenPair, error) {
	access, err := c.sign(userID, email, role, c.accessSecret, c.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := c.sign(userID, email, role, c.refreshSecret, c.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(c.accessTTL.Seconds()),
	}, nil
}

// IssueAccess signs a fresh access credential only, used by non-rotating
// refresh.
func (c *TokenCodec) IssueAccess(userID, email, role string) (string, error) {
	access, err := c.sign(userID, email, role, c.accessSecret, c.accessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// VerifyAccess validates an access credential and returns its claims.
func (c *TokenCodec) VerifyAccess(token string) (*Claims, error) {
	return c.verify(token, c.accessSecret)
}

// VerifyRefresh validates a refresh credential and returns its claims.
func (c *TokenCodec) VerifyRefresh(token string) (*Claims, error) {
	return c.verify(token, c.refreshSecret)
}

// DecodeUnverified parses a credential without checking its signature. The
// result must never drive an authorization decision; it exists so revocation
// bookkeeping can read the expiry of a token it is about to blacklist.
// Returns nil for anything that does not parse as a JWT.
func (c *TokenCodec) DecodeUnverified(token string) *Claims {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	return claims
}

func (c *TokenCodec) sign(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := c.now()
	claims := Claims{
		UserID: userID,
		Email:  strings.TrimSpace(email),
		Role:   strings.TrimSpace(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func (c *TokenCodec) verify(token string, secret []byte) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
