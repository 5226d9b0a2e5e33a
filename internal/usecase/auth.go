package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/logger"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
	"github.com/Vinoddhakad18/go-architecture/internal/repository"
)

var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// Callers must not distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the presented credential failed the
	// verification chain: bad signature, expired, blacklisted, or fenced.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserInactive indicates the account exists but has been deactivated.
	ErrUserInactive = errors.New("user is inactive")
)

// AuthService coordinates login, credential verification, logout, password
// changes and refresh flows.
type AuthService struct {
	users     port.UserRepository
	codec     *security.TokenCodec
	ledger    *RevocationLedger
	events    port.EventPublisher
	validator *security.PasswordValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users port.UserRepository, codec *security.TokenCodec, ledger *RevocationLedger, events port.EventPublisher, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		codec:     codec,
		ledger:    ledger,
		events:    events,
		validator: security.DefaultPasswordValidator(),
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithPasswordValidator replaces the password policy applied on changes.
func (s *AuthService) WithPasswordValidator(validator *security.PasswordValidator) {
	if validator != nil {
		s.validator = validator
	}
}

// LoginResult bundles the authenticated user with the issued credentials.
type LoginResult struct {
	User   *domain.User
	Tokens security.TokenPair
}

// Login authenticates the email/password pair and issues a fresh credential
// pair. Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.logger.Info("login rejected", zap.String("email", logger.MaskEmail(email)))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	tokens, err := s.codec.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Verify runs the full verification chain on an access token: signature and
// expiry, then the blacklist, then the user fence. Every failure collapses
// into ErrUnauthenticated.
func (s *AuthService) Verify(ctx context.Context, rawToken string) (*security.Claims, error) {
	claims, err := s.codec.VerifyAccess(rawToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return s.checkRevocation(ctx, rawToken, claims)
}

// VerifyRefresh runs the same chain against a refresh token.
func (s *AuthService) VerifyRefresh(ctx context.Context, rawToken string) (*security.Claims, error) {
	claims, err := s.codec.VerifyRefresh(rawToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return s.checkRevocation(ctx, rawToken, claims)
}

func (s *AuthService) checkRevocation(ctx context.Context, rawToken string, claims *security.Claims) (*security.Claims, error) {
	if s.ledger == nil {
		return claims, nil
	}
	if s.ledger.IsBlacklisted(ctx, rawToken) {
		return nil, ErrUnauthenticated
	}
	issuedAt := time.Time{}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if s.ledger.IsFencedOut(ctx, claims.UserID, issuedAt) {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Logout revokes the supplied credentials. Revoking a token that is already
// blacklisted or expired is not an error, so repeated logouts succeed.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var userID, email string
	if claims := s.codec.DecodeUnverified(accessToken); claims != nil {
		userID = claims.UserID
		email = claims.Email
	}

	if err := s.ledger.Blacklist(ctx, accessToken, userID, email, domain.RevocationReasonLogout); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	if strings.TrimSpace(refreshToken) != "" {
		if err := s.ledger.Blacklist(ctx, refreshToken, userID, email, domain.RevocationReasonLogout); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}

	s.publishTokenRevoked(ctx, userID, accessToken, domain.RevocationReasonLogout)

	return nil
}

// ChangePassword verifies the current password, enforces the password policy
// on the replacement, persists the new hash, then fences out every credential
// issued before the change. The fence write is mandatory: if it fails the
// operation fails, even though the hash is already stored.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if err := s.validator.Validate(newPassword, user.Email, user.Name); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	changedAt := s.now()
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.ledger.FenceUser(ctx, user.ID, domain.RevocationReasonPasswordChange); err != nil {
		return fmt.Errorf("fence user sessions: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			ChangedAt: changedAt,
			Fenced:    true,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed event failed",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	return nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token stays valid; use RefreshRotate to retire it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, int, error) {
	claims, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", 0, err
	}

	access, err := s.codec.IssueAccess(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return "", 0, fmt.Errorf("issue access token: %w", err)
	}

	return access, int(s.codec.AccessTokenTTL().Seconds()), nil
}

// RefreshRotate exchanges a valid refresh token for a fresh pair and
// blacklists the old refresh token, so replaying it fails like any revoked
// credential. Two concurrent rotations of the same token can both pass the
// check before either revokes; each still retires the token it saw.
func (s *AuthService) RefreshRotate(ctx context.Context, refreshToken string) (*security.TokenPair, error) {
	claims, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Blacklist(ctx, refreshToken, claims.UserID, claims.Email, domain.RevocationReasonRotation); err != nil {
		return nil, fmt.Errorf("retire refresh token: %w", err)
	}

	tokens, err := s.codec.IssuePair(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.publishTokenRevoked(ctx, claims.UserID, refreshToken, domain.RevocationReasonRotation)

	return &tokens, nil
}

func (s *AuthService) publishTokenRevoked(ctx context.Context, userID, rawToken, reason string) {
	if s.events == nil || strings.TrimSpace(rawToken) == "" {
		return
	}
	event := domain.TokenRevokedEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		TokenDigest: security.TokenDigest(rawToken),
		Reason:      reason,
		RevokedAt:   s.now(),
	}
	if err := s.events.PublishTokenRevoked(ctx, event); err != nil {
		s.logger.Warn("publish token revoked event failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
