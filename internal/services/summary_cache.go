package services

import (
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"deckflow/internal/models"
)

// SummaryCacheService keeps short-lived copies of deck list responses so
// polling dashboards don't hammer the store. Entries are invalidated on any
// deck mutation, so the TTL only bounds staleness for missed invalidations.
type SummaryCacheService struct {
	cache *cache.Cache
}

// NewSummaryCacheService creates a summary cache with the given TTL
func NewSummaryCacheService(ttl time.Duration) *SummaryCacheService {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &SummaryCacheService{
		cache: cache.New(ttl, time.Minute),
	}
}

func listKey(limit int) string {
	return fmt.Sprintf("deck_list:%d", limit)
}

// GetList returns a cached deck list for the limit, if present
func (s *SummaryCacheService) GetList(limit int) ([]models.DeckSummary, bool) {
	value, found := s.cache.Get(listKey(limit))
	if !found {
		return nil, false
	}
	summaries, ok := value.([]models.DeckSummary)
	if !ok {
		return nil, false
	}
	return summaries, true
}

// StoreList caches a deck list response
func (s *SummaryCacheService) StoreList(limit int, summaries []models.DeckSummary) {
	s.cache.Set(listKey(limit), summaries, cache.DefaultExpiration)
}

// Invalidate drops all cached lists. Called after every deck mutation.
func (s *SummaryCacheService) Invalidate() {
	count := s.cache.ItemCount()
	s.cache.Flush()
	if count > 0 {
		log.Printf("🗑️ [SUMMARY-CACHE] Invalidated %d cached deck lists", count)
	}
}
