package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestAuthService(store *FakeStore, mailer EmailSender, clock Clock) *AuthService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAuthService(
		store.Users(),
		store.Tokens(),
		store.Sessions(),
		mailer,
		FakeHasher{},
		FakeMailTokens{},
		clock,
		AuthConfig{RefreshTokenTTL: 7 * 24 * time.Hour},
		logger,
	)
}

func TestRefreshSessionRotatesToken(t *testing.T) {
	store := NewFakeStore()
	clock := NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestAuthService(store, nil, clock)

	user := store.SeedUser("Alice", "alice@example.com", "hashed:pw", true)
	store.SeedToken("old-token", user.ID, clock.Now().Add(time.Hour))

	result, err := svc.RefreshSession(context.Background(), "old-token")
	if err != nil {
		t.Fatalf("RefreshSession() error = %v", err)
	}

	if result.Identity.ID != user.ID || result.Identity.Email != "alice@example.com" {
		t.Errorf("identity = %+v, want user %d", result.Identity, user.ID)
	}
	if store.TokenExists("old-token") {
		t.Error("consumed token still present")
	}
	if !store.TokenExists(result.RefreshToken.Token) {
		t.Error("successor token missing")
	}
	if got, want := result.RefreshToken.Expire, clock.Now().Add(7*24*time.Hour); !got.Equal(want) {
		t.Errorf("successor expiry = %v, want %v", got, want)
	}
	if result.RefreshToken.UserID != user.ID {
		t.Errorf("successor bound to user %d, want %d", result.RefreshToken.UserID, user.ID)
	}
}

func TestRefreshSessionSingleUse(t *testing.T) {
	store := NewFakeStore()
	clock := NewFakeClock(time.Now())
	svc := newTestAuthService(store, nil, clock)

	user := store.SeedUser("Alice", "alice@example.com", "hashed:pw", true)
	store.SeedToken("once", user.ID, clock.Now().Add(time.Hour))

	if _, err := svc.RefreshSession(context.Background(), "once"); err != nil {
		t.Fatalf("first rotation failed: %v", err)
	}
	if _, err := svc.RefreshSession(context.Background(), "once"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("replayed token error = %v, want ErrSessionExpired", err)
	}
}

func TestRefreshSessionExpiredTokenPurged(t *testing.T) {
	store := NewFakeStore()
	clock := NewFakeClock(time.Now())
	svc := newTestAuthService(store, nil, clock)

	user := store.SeedUser("Alice", "alice@example.com", "hashed:pw", true)
	store.SeedToken("stale", user.ID, clock.Now().Add(-time.Minute))

	_, err := svc.RefreshSession(context.Background(), "stale")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expired token error = %v, want ErrSessionExpired", err)
	}
	if store.TokenExists("stale") {
		t.Error("expired token not purged on use")
	}
}

func TestRefreshSessionRejections(t *testing.T) {
	tests := []struct {
		name      string
		presented string
	}{
		{name: "unknown token", presented: "never-issued"},
		{name: "empty token", presented: ""},
		{name: "whitespace token", presented: "   "},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewFakeStore()
			svc := newTestAuthService(store, nil, NewFakeClock(time.Now()))

			_, err := svc.RefreshSession(context.Background(), test.presented)
			if !errors.Is(err, ErrSessionExpired) {
				t.Fatalf("error = %v, want ErrSessionExpired", err)
			}
		})
	}
}

// A failed rotation must leave the presented row exactly as it was.
func TestRefreshSessionFailureLeavesTokenUntouched(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		store := NewFakeStore()
		clock := NewFakeClock(time.Now())
		svc := newTestAuthService(store, nil, clock)

		user := store.SeedUser("Alice", "alice@example.com", "hashed:pw", true)
		store.SeedToken("kept", user.ID, clock.Now().Add(time.Hour))
		store.RotateErr = errors.New("connection reset")

		if _, err := svc.RefreshSession(context.Background(), "kept"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
		if !store.TokenExists("kept") {
			t.Error("token vanished despite failed rotation")
		}
		if store.TokenCount() != 1 {
			t.Errorf("token count = %d, want 1", store.TokenCount())
		}
	})

	t.Run("owner missing", func(t *testing.T) {
		store := NewFakeStore()
		clock := NewFakeClock(time.Now())
		svc := newTestAuthService(store, nil, clock)

		store.SeedToken("orphan", 42, clock.Now().Add(time.Hour))

		if _, err := svc.RefreshSession(context.Background(), "orphan"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
		if !store.TokenExists("orphan") {
			t.Error("rotation of an orphaned token must roll back, not half-apply")
		}
	})
}

func TestRefreshSessionConcurrentSingleWinner(t *testing.T) {
	store := NewFakeStore()
	clock := NewFakeClock(time.Now())
	svc := newTestAuthService(store, nil, clock)

	user := store.SeedUser("Alice", "alice@example.com", "hashed:pw", true)
	store.SeedToken("contested", user.ID, clock.Now().Add(time.Hour))

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.RefreshSession(context.Background(), "contested")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrSessionExpired) {
			fail++
			continue
		}
		t.Fatalf("unexpected rotation error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one successful rotation, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d rejections, got %d", n-1, fail)
	}
	if store.TokenCount() != 1 {
		t.Fatalf("token count after contest = %d, want 1", store.TokenCount())
	}
	if store.TokenExists("contested") {
		t.Fatal("contested token survived rotation")
	}
}
