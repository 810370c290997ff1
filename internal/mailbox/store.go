// Package mailbox is the server half of the callback polling protocol.
//
// A browser that follows a callback URI lands on /callback, which stores the
// URI under the identifier it names. The page-hosted runtime polls
// /fetch-callback for that identifier and receives everything stored so far
// as one JSON array, or an empty body when nothing is waiting.
package mailbox

import (
	"strings"
	"sync"
	"time"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
)

type stored struct {
	record uri.Components
	at     time.Time
}

// Store is a short in-memory buffer of callback records keyed by identifier.
// Each identifier keeps at most capacity records, oldest first; records older
// than ttl are discarded whenever the identifier is touched, and identifiers
// nobody touches are swept at most once per ttl.
type Store struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	queues    map[string][]stored
	lastSweep time.Time
}

// NewStore creates a Store. Non-positive values fall back to 1 record and no
// expiry.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		queues:   make(map[string][]stored),
	}
}

func storeKey(id string) string {
	return strings.ToLower(id)
}

// Put appends record for id and reports how many old records were dropped to
// stay within capacity.
func (s *Store) Put(id string, record uri.Components) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeSweepLocked()

	key := storeKey(id)
	queue := append(s.expireLocked(key), stored{record: record, at: s.now()})

	dropped := 0
	if over := len(queue) - s.capacity; over > 0 {
		dropped = over
		queue = queue[over:]
	}
	s.queues[key] = queue
	return dropped
}

// Drain removes and returns every live record for id, oldest first.
func (s *Store) Drain(id string) []uri.Components {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeSweepLocked()

	key := storeKey(id)
	queue := s.expireLocked(key)
	delete(s.queues, key)

	if len(queue) == 0 {
		return nil
	}
	out := make([]uri.Components, len(queue))
	for i, item := range queue {
		out[i] = item.record
	}
	return out
}

// Len returns the number of live records for id.
func (s *Store) Len(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(id)
	queue := s.expireLocked(key)
	if len(queue) == 0 {
		delete(s.queues, key)
	} else {
		s.queues[key] = queue
	}
	return len(queue)
}

// Identifiers returns the number of identifiers holding records.
func (s *Store) Identifiers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}

// Sweep drops expired records of every identifier and forgets identifiers
// left empty. It returns how many identifiers were forgotten.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Store) maybeSweepLocked() {
	if s.ttl <= 0 {
		return
	}
	if now := s.now(); now.Sub(s.lastSweep) >= s.ttl {
		s.sweepLocked()
	}
}

func (s *Store) sweepLocked() int {
	s.lastSweep = s.now()
	if s.ttl <= 0 {
		return 0
	}

	released := 0
	for key := range s.queues {
		queue := s.expireLocked(key)
		if len(queue) == 0 {
			delete(s.queues, key)
			released++
			continue
		}
		s.queues[key] = queue
	}
	return released
}

// expireLocked returns the queue for key without records past the ttl.
func (s *Store) expireLocked(key string) []stored {
	queue := s.queues[key]
	if s.ttl <= 0 || len(queue) == 0 {
		return queue
	}

	cutoff := s.now().Add(-s.ttl)
	i := 0
	for i < len(queue) && !queue[i].at.After(cutoff) {
		i++
	}
	return queue[i:]
}
