package services

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/alimgiray/heartbeat/internal/models"
)

// FirstInteractionService reduces per-unit interaction partials into one
// earliest-interaction entry per user across the whole corpus. Units are
// classified concurrently, so the reduction serializes updates behind a
// single lock and merges by timestamp, never by arrival order.
type FirstInteractionService struct {
	mu      sync.Mutex
	entries map[string]*models.FirstInteraction
}

func NewFirstInteractionService() *FirstInteractionService {
	return &FirstInteractionService{
		entries: make(map[string]*models.FirstInteraction),
	}
}

// Earlier returns whichever entry wins the earliest-interaction merge.
// Replacement is only on a strictly earlier timestamp: within one unit a
// pull request and its issue twin share a timestamp, and the PR record
// is inserted first, so the twin never displaces it. Ties between
// different units fall back to path order so the merge stays
// deterministic no matter which worker reports first.
func Earlier(a, b *models.FirstInteraction) *models.FirstInteraction {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.OccurredAt.Before(a.OccurredAt) {
		return b
	}
	if a.OccurredAt.Before(b.OccurredAt) {
		return a
	}
	if a.Dir != b.Dir && filepath.Join(b.Dir, b.File) < filepath.Join(a.Dir, a.File) {
		return b
	}
	return a
}

// InsertEarliest merges one entry into a per-user map
func InsertEarliest(entries map[string]*models.FirstInteraction, fi *models.FirstInteraction) {
	entries[fi.User] = Earlier(entries[fi.User], fi)
}

// MergePartial folds one unit's interaction partial into the global map
func (s *FirstInteractionService) MergePartial(partial map[string]*models.FirstInteraction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fi := range partial {
		s.entries[fi.User] = Earlier(s.entries[fi.User], fi)
	}
}

// Entries returns every user's first interaction, sorted by username
func (s *FirstInteractionService) Entries() []*models.FirstInteraction {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.FirstInteraction, 0, len(s.entries))
	for _, fi := range s.entries {
		result = append(result, fi)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].User < result[j].User
	})
	return result
}

// UserCount returns the number of distinct users seen so far
func (s *FirstInteractionService) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
