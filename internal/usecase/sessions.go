package usecase

import (
	"sort"
	"sync"
	"time"
)

// sessionStore holds short-lived interactive sessions keyed by token,
// with an owner check, idle TTL, and a capacity bound evicting the
// oldest-touched entries first. The clock is injected so expiry is
// testable without sleeping.
type sessionStore[T any] struct {
	mu        sync.Mutex
	entries   map[string]*sessionEntry[T]
	ttl       time.Duration
	capacity  int
	evictStep int
	now       func() time.Time
}

type sessionEntry[T any] struct {
	owner   int64
	touched time.Time
	value   T
}

func newSessionStore[T any](ttl time.Duration, capacity, evictStep int, now func() time.Time) *sessionStore[T] {
	if now == nil {
		now = time.Now
	}
	if evictStep < 1 {
		evictStep = 1
	}
	return &sessionStore[T]{
		entries:   make(map[string]*sessionEntry[T]),
		ttl:       ttl,
		capacity:  capacity,
		evictStep: evictStep,
		now:       now,
	}
}

func (s *sessionStore[T]) Put(token string, owner int64, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = &sessionEntry[T]{owner: owner, touched: s.now(), value: value}
	s.purgeLocked()
}

// Get returns the session value, refreshing its touch time. A wrong
// owner is rejected without touching anything: the stranger's click
// must not keep the session alive.
func (s *sessionStore[T]) Get(token string, owner int64) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return zero, ErrSessionExpired
	}
	if s.ttl > 0 && s.now().Sub(e.touched) > s.ttl {
		delete(s.entries, token)
		return zero, ErrSessionExpired
	}
	if e.owner != owner {
		return zero, ErrSessionNotOwned
	}
	e.touched = s.now()
	return e.value, nil
}

func (s *sessionStore[T]) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

func (s *sessionStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// purgeLocked drops expired entries, then enforces the capacity bound
// by evicting the oldest-touched sessions in one batch.
func (s *sessionStore[T]) purgeLocked() {
	if s.ttl > 0 {
		cutoff := s.now().Add(-s.ttl)
		for token, e := range s.entries {
			if e.touched.Before(cutoff) {
				delete(s.entries, token)
			}
		}
	}
	if s.capacity <= 0 || len(s.entries) <= s.capacity {
		return
	}
	type tokenTime struct {
		token   string
		touched time.Time
	}
	all := make([]tokenTime, 0, len(s.entries))
	for token, e := range s.entries {
		all = append(all, tokenTime{token: token, touched: e.touched})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].touched.Before(all[j].touched) })

	drop := len(s.entries) - s.capacity + s.evictStep - 1
	if drop > len(all) {
		drop = len(all)
	}
	for i := 0; i < drop; i++ {
		delete(s.entries, all[i].token)
	}
}
