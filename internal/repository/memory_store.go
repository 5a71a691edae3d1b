package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	domainRepo "clinical-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const memorySweepInterval = time.Minute

type memoryEntry struct {
	value    int64
	expireAt time.Time
}

// MemoryStore is a process-local substitute for Redis, used when THROTTLE_BACKEND=memory
// and in tests. It serves both throttle counters and the refresh token registry.
// Expired keys are swept in the background until Stop is called.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	log     *logrus.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

var (
	_ domainRepo.ThrottleRepository = (*MemoryStore)(nil)
	_ domainRepo.TokenRepository    = (*MemoryStore)(nil)
)

func NewMemoryStore(log *logrus.Logger) *MemoryStore {
	return newMemoryStore(log, time.Now, memorySweepInterval)
}

func newMemoryStore(log *logrus.Logger, now func() time.Time, sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]memoryEntry),
		now:      now,
		log:      log,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop(sweepEvery)

	return s
}

// Stop ends the sweeper. Safe to call multiple times.
func (s *MemoryStore) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.expireAt) {
		entry = memoryEntry{}
	}
	entry.value++
	entry.expireAt = now.Add(ttl)
	s.entries[key] = entry

	return entry.value, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expireAt) {
		return 0, nil
	}
	return entry.value, nil
}

func (s *MemoryStore) Register(_ context.Context, userID, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[refreshTokenKey(userID, tokenID)] = memoryEntry{value: 1, expireAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, userID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[refreshTokenKey(userID, tokenID)]
	return ok && s.now().Before(entry.expireAt), nil
}

func (s *MemoryStore) Revoke(_ context.Context, userID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, refreshTokenKey(userID, tokenID))
	return nil
}

// Len reports live and not yet swept keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var cleaned int
	for key, entry := range s.entries {
		if !now.Before(entry.expireAt) {
			delete(s.entries, key)
			cleaned++
		}
	}

	if cleaned > 0 && s.log != nil {
		s.log.Debugf("Swept %d expired in-memory keys", cleaned)
	}
}
