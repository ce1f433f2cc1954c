package repository

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireLockBusy(t *testing.T) {
	tester := &tester{
		dbFileName: "./lock_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	if _, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-1", time.Minute); err != nil {
		t.Fatalf("Expected first acquire to succeed, got %v", err)
	}

	_, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-2", time.Minute)

	if !errors.Is(err, ErrLockBusy) {
		t.Errorf("Expected ErrLockBusy for second acquirer, got %v", err)
	}

	// a different resource is unaffected
	if _, err := tester.repo.Lock.AcquireLock("other-asg", "incident-2", time.Minute); err != nil {
		t.Errorf("Expected acquire on a different resource to succeed, got %v", err)
	}
}

func TestAcquireLockExpiredTakeover(t *testing.T) {
	tester := &tester{
		dbFileName: "./lock_expired_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	if _, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-1", -time.Second); err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}

	lock, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-2", time.Minute)

	if err != nil {
		t.Fatalf("Expected takeover of expired lock to succeed, got %v", err)
	}

	if lock.HolderID != "incident-2" {
		t.Errorf("Expected holder incident-2, got %s", lock.HolderID)
	}
}

func TestReleaseLockAllowsReacquire(t *testing.T) {
	tester := &tester{
		dbFileName: "./lock_release_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	if _, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-1", time.Minute); err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}

	if err := tester.repo.Lock.ReleaseLock("app-prod-asg", "incident-1"); err != nil {
		t.Fatalf("Expected release to succeed, got %v", err)
	}

	if _, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-2", time.Minute); err != nil {
		t.Errorf("Expected reacquire after release to succeed, got %v", err)
	}
}

func TestReleaseLockWrongHolderIsNoop(t *testing.T) {
	tester := &tester{
		dbFileName: "./lock_wrong_holder_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	if _, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-1", time.Minute); err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}

	if err := tester.repo.Lock.ReleaseLock("app-prod-asg", "incident-2"); err != nil {
		t.Fatalf("Expected release by non-holder to be a no-op, got %v", err)
	}

	_, err := tester.repo.Lock.AcquireLock("app-prod-asg", "incident-3", time.Minute)

	if !errors.Is(err, ErrLockBusy) {
		t.Errorf("Expected lock to still be held, got %v", err)
	}
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	tester := &tester{
		dbFileName: "./lock_concurrent_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	var acquired int64
	var busy int64
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			_, err := tester.repo.Lock.AcquireLock("shared-resource", "holder", time.Minute)

			if err == nil {
				atomic.AddInt64(&acquired, 1)
			} else if errors.Is(err, ErrLockBusy) {
				atomic.AddInt64(&busy, 1)
			} else {
				t.Errorf("unexpected acquire error: %v", err)
			}
		}(i)
	}

	wg.Wait()

	if acquired != 1 {
		t.Errorf("Expected exactly one winner, got %d", acquired)
	}

	if busy != 7 {
		t.Errorf("Expected 7 busy acquirers, got %d", busy)
	}
}

func TestPurgeExpired(t *testing.T) {
	tester := &tester{
		dbFileName: "./lock_purge_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	if _, err := tester.repo.Lock.AcquireLock("expired-resource", "incident-1", -time.Second); err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}

	if _, err := tester.repo.Lock.AcquireLock("live-resource", "incident-1", time.Minute); err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}

	purged, err := tester.repo.Lock.PurgeExpired()

	if err != nil {
		t.Fatalf("Expected no error purging locks, got %v", err)
	}

	if purged != 1 {
		t.Errorf("Expected 1 purged lock, got %d", purged)
	}

	_, err = tester.repo.Lock.AcquireLock("live-resource", "incident-2", time.Minute)

	if !errors.Is(err, ErrLockBusy) {
		t.Errorf("Expected live lock to survive purge, got %v", err)
	}
}
