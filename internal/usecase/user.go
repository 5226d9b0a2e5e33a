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
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates the requested account does not exist or was
	// deleted.
	ErrUserNotFound = errors.New("user not found")
)

// UserService handles account registration and profile CRUD. Reads go
// through the cache; write paths invalidate the account's identity key.
type UserService struct {
	users     port.UserRepository
	cache     port.TTLStore
	ttls      domain.CacheTTLs
	events    port.EventPublisher
	validator *security.PasswordValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, cache port.TTLStore, ttls domain.CacheTTLs, events port.EventPublisher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		users:     users,
		cache:     cache,
		ttls:      ttls,
		events:    events,
		validator: security.DefaultPasswordValidator(),
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *UserService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Register creates a new active account with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	if err := s.validator.Validate(password, email, name); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:                 uuid.NewString(),
		Name:               name,
		Email:              email,
		PasswordHash:       hash,
		Role:               domain.RoleUser,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
		LastPasswordChange: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			RegisteredAt: now,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered event failed",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)))

	return &user, nil
}

// GetUser loads an account, consulting the cache before the database.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrUserNotFound
	}

	key := domain.CacheKeyUser(id)
	if s.cache != nil {
		var cached domain.User
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("user cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	s.cacheSet(ctx, key, user, s.ttls.For(domain.CacheTierMedium))

	return user, nil
}

// UpdateProfile changes the mutable profile fields and invalidates the cached
// entry.
func (s *UserService) UpdateProfile(ctx context.Context, id, name string) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	user.Name = name
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.cacheDelete(ctx, domain.CacheKeyUser(id))

	return user, nil
}

// DeleteUser soft-deletes the account and drops its cached entry.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.cacheDelete(ctx, domain.CacheKeyUser(id))

	return nil
}

// ListUsers returns a page of accounts. Listings are admin-only and low
// volume, so they bypass the cache.
func (s *UserService) ListUsers(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, ttl); err != nil {
		s.logger.Warn("user cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *UserService) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("user cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
