package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
)

// RevocationLedger tracks credentials revoked ahead of their natural expiry.
// It keeps two kinds of records in the shared TTL store: per-token blacklist
// entries keyed by digest, and per-user fences that reject every credential
// issued before the fence instant.
//
// Writes are fail-closed: a store error aborts the revocation so the caller
// never believes a credential was revoked when it was not. Reads are
// fail-open: a store error is logged and treated as "not revoked", keeping
// authenticated traffic flowing through store outages.
type RevocationLedger struct {
	codec     *security.TokenCodec
	blacklist port.TTLStore
	fences    port.TTLStore
	fenceTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewRevocationLedger constructs a ledger over the supplied stores. The fence
// TTL should match the longest credential lifetime so a fence outlives every
// token issued before it.
func NewRevocationLedger(codec *security.TokenCodec, blacklist, fences port.TTLStore, fenceTTL time.Duration, logger *zap.Logger) *RevocationLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fenceTTL <= 0 && codec != nil {
		fenceTTL = codec.RefreshTokenTTL()
	}
	return &RevocationLedger{
		codec:     codec,
		blacklist: blacklist,
		fences:    fences,
		fenceTTL:  fenceTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (l *RevocationLedger) WithClock(clock func() time.Time) {
	if clock != nil {
		l.now = clock
	}
}

// Blacklist records the supplied raw credential as revoked. The entry lives
// exactly as long as the credential itself would have: its TTL is the
// remaining time until the token's expiry claim. Tokens that are already
// expired, or too malformed to carry an expiry, need no entry and are
// silently accepted.
func (l *RevocationLedger) Blacklist(ctx context.Context, rawToken, userID, email, reason string) error {
	if strings.TrimSpace(rawToken) == "" {
		return fmt.Errorf("token is required")
	}
	if l.blacklist == nil {
		return fmt.Errorf("blacklist store not configured")
	}

	claims := l.codec.DecodeUnverified(rawToken)
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	now := l.now()
	ttl := claims.ExpiresAt.Time.Sub(now)
	if ttl <= 0 {
		return nil
	}

	entry := domain.BlacklistEntry{
		Reason:        reason,
		BlacklistedAt: now,
		UserID:        userID,
		Email:         email,
	}
	if err := l.blacklist.SetJSON(ctx, security.TokenDigest(rawToken), entry, ttl); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

// IsBlacklisted reports whether the raw credential has a live blacklist
// entry. Store errors are logged and reported as "not blacklisted".
func (l *RevocationLedger) IsBlacklisted(ctx context.Context, rawToken string) bool {
	if strings.TrimSpace(rawToken) == "" || l.blacklist == nil {
		return false
	}

	found, err := l.blacklist.Exists(ctx, security.TokenDigest(rawToken))
	if err != nil {
		l.logger.Warn("blacklist lookup failed, allowing token", zap.Error(err))
		return false
	}

	return found
}

// FenceUser invalidates every credential issued for the user before now. The
// fence expires after the longest credential lifetime, by which point every
// token it guards against has expired on its own.
func (l *RevocationLedger) FenceUser(ctx context.Context, userID, reason string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if l.fences == nil {
		return fmt.Errorf("fence store not configured")
	}

	fence := domain.UserFence{
		InvalidatedAt: l.now(),
		Reason:        reason,
	}
	if err := l.fences.SetJSON(ctx, userID, fence, l.fenceTTL); err != nil {
		return fmt.Errorf("fence user: %w", err)
	}

	return nil
}

// IsFencedOut reports whether a credential issued at issuedAt falls behind
// the user's fence. Store errors are logged and reported as "not fenced".
func (l *RevocationLedger) IsFencedOut(ctx context.Context, userID string, issuedAt time.Time) bool {
	if strings.TrimSpace(userID) == "" || l.fences == nil {
		return false
	}

	var fence domain.UserFence
	found, err := l.fences.GetJSON(ctx, userID, &fence)
	if err != nil {
		l.logger.Warn("fence lookup failed, allowing token",
			zap.String("user_id", userID),
			zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	return issuedAt.Before(fence.InvalidatedAt)
}
