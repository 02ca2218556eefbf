package store

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	sess := &PendingSession{
		RedirectURI: "https://client/cb",
		ClientState: "xyz",
		CreatedAt:   time.Now(),
	}
	PutSession(ms, "corr-1", sess, 10*time.Minute)

	got, ok := ConsumeSession(ms, "corr-1")
	if !ok {
		t.Fatal("Expected session to be present")
	}
	if got.RedirectURI != sess.RedirectURI {
		t.Errorf("Expected redirect URI %q, got %q", sess.RedirectURI, got.RedirectURI)
	}
	if got.ClientState != "xyz" {
		t.Errorf("Expected client state %q, got %q", "xyz", got.ClientState)
	}
}

func TestMemoryStore_ConsumeIsSingleUse(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	PutCode(ms, "code-1", &AuthCode{Principal: "alice"}, time.Minute)

	if _, ok := ConsumeCode(ms, "code-1"); !ok {
		t.Fatal("First consume should succeed")
	}
	if _, ok := ConsumeCode(ms, "code-1"); ok {
		t.Error("Second consume should fail (code already redeemed)")
	}
}

func TestMemoryStore_ExpiredEntryIsAbsent(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	base := time.Now()
	ms.now = func() time.Time { return base }

	PutAccessToken(ms, "tok-1", &AccessToken{Principal: "alice"}, time.Hour)

	if _, ok := GetAccessToken(ms, "tok-1"); !ok {
		t.Fatal("Token should be live before expiry")
	}

	// Advance the clock past the TTL.
	ms.now = func() time.Time { return base.Add(time.Hour + time.Second) }

	if _, ok := GetAccessToken(ms, "tok-1"); ok {
		t.Error("Expired token should be treated as absent")
	}
	if _, ok := ms.Consume(KindAccess, "tok-1"); ok {
		t.Error("Expired token should not be consumable either")
	}
}

func TestMemoryStore_DeleteRemoves(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	PutAccessToken(ms, "tok-1", &AccessToken{Principal: "alice"}, time.Hour)
	ms.Delete(KindAccess, "tok-1")

	if _, ok := GetAccessToken(ms, "tok-1"); ok {
		t.Error("Deleted token should be absent")
	}
}

func TestMemoryStore_KindsDoNotCollide(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	// Same key under two kinds must be independent entries.
	PutCode(ms, "same-key", &AuthCode{Principal: "alice"}, time.Minute)
	PutAccessToken(ms, "same-key", &AccessToken{Principal: "bob"}, time.Minute)

	if _, ok := ConsumeCode(ms, "same-key"); !ok {
		t.Fatal("Code should be present")
	}
	if _, ok := GetAccessToken(ms, "same-key"); !ok {
		t.Error("Consuming the code must not remove the access token")
	}
}

func TestMemoryStore_ConcurrentConsumeHasOneWinner(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	PutSession(ms, "corr-1", &PendingSession{ClientState: "xyz"}, time.Minute)

	const racers = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := ConsumeSession(ms, "corr-1"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 winner, got %d", count)
	}
}

func TestMemoryStore_SweepReclaimsExpired(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Stop()

	base := time.Now()
	ms.now = func() time.Time { return base }

	PutAccessToken(ms, "live", &AccessToken{Principal: "alice"}, time.Hour)
	PutAccessToken(ms, "dead", &AccessToken{Principal: "bob"}, time.Minute)

	ms.now = func() time.Time { return base.Add(2 * time.Minute) }
	ms.sweep()

	if ms.Count() != 1 {
		t.Errorf("Expected 1 entry after sweep, got %d", ms.Count())
	}
	if _, ok := GetAccessToken(ms, "live"); !ok {
		t.Error("Live token should survive the sweep")
	}
}

func TestMemoryStore_StopIsIdempotent(t *testing.T) {
	ms := NewMemoryStore()
	ms.Stop()
	ms.Stop() // must not panic
}
