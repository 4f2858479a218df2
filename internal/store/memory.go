package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"deckflow/internal/models"
)

// MemoryDeckStore is an in-memory DeckStore used in tests and for ephemeral
// deployments. Documents are deep-copied on every read and write so callers
// never share state with the store.
type MemoryDeckStore struct {
	mu    sync.RWMutex
	decks map[string]*models.Deck
}

// NewMemoryDeckStore creates an empty in-memory store
func NewMemoryDeckStore() *MemoryDeckStore {
	return &MemoryDeckStore{decks: make(map[string]*models.Deck)}
}

func cloneDeck(deck *models.Deck) *models.Deck {
	data, _ := json.Marshal(deck)
	var out models.Deck
	_ = json.Unmarshal(data, &out)
	return &out
}

// Save upserts the full deck document
func (s *MemoryDeckStore) Save(ctx context.Context, deck *models.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[deck.ID] = cloneDeck(deck)
	return nil
}

// Get retrieves a deck by ID
func (s *MemoryDeckStore) Get(ctx context.Context, deckID string) (*models.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deck, ok := s.decks[deckID]
	if !ok {
		return nil, ErrDeckNotFound
	}
	return cloneDeck(deck), nil
}

// UpdateStatus sets status, step and updated_at
func (s *MemoryDeckStore) UpdateStatus(ctx context.Context, deckID string, status models.DeckStatus, step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}
	deck.Status = status
	deck.Step = &step
	deck.UpdatedAt = time.Now().UTC()
	return nil
}

// ListRecent returns decks ordered by created_at descending
func (s *MemoryDeckStore) ListRecent(ctx context.Context, limit int) ([]*models.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decks := make([]*models.Deck, 0, len(s.decks))
	for _, deck := range s.decks {
		decks = append(decks, cloneDeck(deck))
	}
	sort.Slice(decks, func(i, j int) bool {
		return decks[i].CreatedAt.After(decks[j].CreatedAt)
	})
	if limit > 0 && len(decks) > limit {
		decks = decks[:limit]
	}
	return decks, nil
}

// Delete removes a deck
func (s *MemoryDeckStore) Delete(ctx context.Context, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[deckID]; !ok {
		return ErrDeckNotFound
	}
	delete(s.decks, deckID)
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryDeckStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryDeckStore) Close(ctx context.Context) error {
	return nil
}
