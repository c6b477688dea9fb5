package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
)

var (
	// ErrEmptyMempool indicates the store holds no candidates to simulate.
	ErrEmptyMempool = errors.New("mempool store is empty")
	// ErrInvalidCandidates indicates a replacement set failed validation.
	ErrInvalidCandidates = errors.New("candidate set contains invalid entries")
)

// Store provides access to the candidate set the serve-mode API simulates
// against.
type Store interface {
	Candidates() ([]packer.Candidate, error)
	Replace(candidates []packer.Candidate) error
	UpdatedAt() time.Time
}

// MempoolStore keeps the current candidate snapshot in memory and guards
// access with a RWMutex.
type MempoolStore struct {
	mu         sync.RWMutex
	candidates []packer.Candidate
	updatedAt  time.Time

	clock func() time.Time
}

// NewMempoolStore initialises an empty store.
func NewMempoolStore() *MempoolStore {
	return &MempoolStore{
		candidates: []packer.Candidate{},
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Candidates returns a defensive copy of the stored set, or ErrEmptyMempool
// when nothing has been loaded yet.
func (s *MempoolStore) Candidates() ([]packer.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.candidates) == 0 {
		return nil, ErrEmptyMempool
	}

	out := make([]packer.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}

// Replace validates and stores a new candidate set. Entries with a
// non-positive size are rejected wholesale; partial replacement would leave
// the store in a state no fetch ever produced.
func (s *MempoolStore) Replace(candidates []packer.Candidate) error {
	if len(candidates) == 0 {
		return fmt.Errorf("%w: empty set", ErrInvalidCandidates)
	}
	for i := range candidates {
		if candidates[i].Size <= 0 {
			return fmt.Errorf("%w: candidate %q has non-positive size", ErrInvalidCandidates, candidates[i].ID)
		}
	}

	out := make([]packer.Candidate, len(candidates))
	copy(out, candidates)

	s.mu.Lock()
	s.candidates = out
	s.updatedAt = s.clock()
	s.mu.Unlock()

	return nil
}

// UpdatedAt reports when the candidate set was last replaced; zero until the
// first Replace.
func (s *MempoolStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
