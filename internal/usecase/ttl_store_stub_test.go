package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

type fakeEntry struct {
	data      []byte
	expiresAt time.Time
	ttl       time.Duration
}

// fakeTTLStore is an in-memory port.TTLStore honouring TTLs against an
// injectable clock and supporting error injection.
type fakeTTLStore struct {
	now     func() time.Time
	entries map[string]fakeEntry

	getErr error
	setErr error
	delErr error

	deletedKeys     []string
	deletedPatterns []string
}

func newFakeTTLStore(now func() time.Time) *fakeTTLStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &fakeTTLStore{
		now:     now,
		entries: make(map[string]fakeEntry),
	}
}

func (s *fakeTTLStore) live(key string) (fakeEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return fakeEntry{}, false
	}
	if !entry.expiresAt.After(s.now()) {
		delete(s.entries, key)
		return fakeEntry{}, false
	}
	return entry, true
}

func (s *fakeTTLStore) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if s.getErr != nil {
		return false, s.getErr
	}
	entry, ok := s.live(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *fakeTTLStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = fakeEntry{
		data:      data,
		expiresAt: s.now().Add(ttl),
		ttl:       ttl,
	}
	return nil
}

func (s *fakeTTLStore) Exists(_ context.Context, key string) (bool, error) {
	if s.getErr != nil {
		return false, s.getErr
	}
	_, ok := s.live(key)
	return ok, nil
}

func (s *fakeTTLStore) Delete(_ context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	for _, key := range keys {
		s.deletedKeys = append(s.deletedKeys, key)
		delete(s.entries, key)
	}
	return nil
}

func (s *fakeTTLStore) DeletePattern(_ context.Context, pattern string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deletedPatterns = append(s.deletedPatterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *fakeTTLStore) ttlOf(key string) (time.Duration, bool) {
	entry, ok := s.live(key)
	if !ok {
		return 0, false
	}
	return entry.ttl, true
}
