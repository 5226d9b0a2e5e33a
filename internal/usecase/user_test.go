package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
)

type userFixture struct {
	service   *UserService
	repo      *fakeUserRepository
	cache     *fakeTTLStore
	publisher *fakeEventPublisher
}

func newUserFixture(t *testing.T, now func() time.Time, users ...domain.User) *userFixture {
	t.Helper()

	repo := newFakeUserRepository(users...)
	cache := newFakeTTLStore(now)
	publisher := &fakeEventPublisher{}

	service := NewUserService(repo, cache, testCacheTTLs, publisher, nil)
	service.WithClock(now)

	return &userFixture{service: service, repo: repo, cache: cache, publisher: publisher}
}

func TestUserService_Register(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now)

	user, err := fx.service.Register(context.Background(), "Bob", "Bob@Example.COM", "C0mplex!Passphrase#2026")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.Email != "bob@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Role != domain.RoleUser || !user.IsActive {
		t.Fatalf("unexpected defaults: %+v", user)
	}
	if user.PasswordHash == "C0mplex!Passphrase#2026" {
		t.Fatalf("password stored in the clear")
	}
	if ok, err := security.VerifyPassword("C0mplex!Passphrase#2026", user.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}

	if len(fx.publisher.registered) != 1 {
		t.Fatalf("expected a registration event")
	}
	if fx.publisher.registered[0].UserID != user.ID {
		t.Fatalf("event references wrong user: %+v", fx.publisher.registered[0])
	}
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now, testUser(t, "C0mplex!Passphrase#2026"))

	_, err := fx.service.Register(context.Background(), "Imposter", "alice@example.com", "An0ther!Passphrase#2026")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_RegisterRejectsWeakPassword(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now)

	_, err := fx.service.Register(context.Background(), "Bob", "bob@example.com", "password")
	var policyErr *security.PasswordValidationError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected password policy violation, got %v", err)
	}
	if len(fx.repo.usersByID) != 0 {
		t.Fatalf("expected no account to be created")
	}
}

func TestUserService_GetUserReadThrough(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now, testUser(t, "C0mplex!Passphrase#2026"))

	user, err := fx.service.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	ttl, ok := fx.cache.ttlOf(domain.CacheKeyUser("user-1"))
	if !ok {
		t.Fatalf("expected miss to populate the cache")
	}
	if ttl != testCacheTTLs.Medium {
		t.Fatalf("expected medium tier TTL, got %s", ttl)
	}

	// A cached read survives the account vanishing from the database.
	delete(fx.repo.usersByID, "user-1")
	cached, err := fx.service.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected cached read, got %v", err)
	}
	if cached.ID != "user-1" {
		t.Fatalf("unexpected cached user: %+v", cached)
	}
}

func TestUserService_UpdateProfileInvalidatesCache(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now, testUser(t, "C0mplex!Passphrase#2026"))

	if _, err := fx.service.GetUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}

	updated, err := fx.service.UpdateProfile(context.Background(), "user-1", "Alice Cooper")
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Name != "Alice Cooper" {
		t.Fatalf("unexpected user: %+v", updated)
	}

	if !containsKey(fx.cache.deletedKeys, domain.CacheKeyUser("user-1")) {
		t.Fatalf("expected identity key invalidation, deleted: %v", fx.cache.deletedKeys)
	}

	// The next read repopulates with the new name.
	fresh, err := fx.service.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if fresh.Name != "Alice Cooper" {
		t.Fatalf("stale profile served: %+v", fresh)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now, testUser(t, "C0mplex!Passphrase#2026"))

	if _, err := fx.service.GetUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}

	if err := fx.service.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}

	if !containsKey(fx.cache.deletedKeys, domain.CacheKeyUser("user-1")) {
		t.Fatalf("expected identity key invalidation, deleted: %v", fx.cache.deletedKeys)
	}
	if _, err := fx.service.GetUser(context.Background(), "user-1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected deleted account to be gone, got %v", err)
	}

	if err := fx.service.DeleteUser(context.Background(), "user-1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected second delete to report ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ListUsersBypassesCache(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newUserFixture(t, now, testUser(t, "C0mplex!Passphrase#2026"))

	users, err := fx.service.ListUsers(context.Background(), port.UserFilter{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("unexpected listing: %+v", users)
	}
	if len(fx.cache.entries) != 0 {
		t.Fatalf("listings must not be cached, got %v", fx.cache.entries)
	}
}
