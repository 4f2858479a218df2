package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"deckflow/internal/database"
	"deckflow/internal/models"
)

// MongoDeckStore handles MongoDB CRUD for decks
type MongoDeckStore struct {
	collection *mongo.Collection
	db         *database.MongoDB
}

// NewMongoDeckStore creates a new deck store
func NewMongoDeckStore(mongodb *database.MongoDB) *MongoDeckStore {
	return &MongoDeckStore{
		collection: mongodb.Collection(database.CollectionDecks),
		db:         mongodb,
	}
}

// Save upserts the full deck document
func (s *MongoDeckStore) Save(ctx context.Context, deck *models.Deck) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": deck.ID}, deck, opts)
	if err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}
	return nil
}

// Get retrieves a deck by ID
func (s *MongoDeckStore) Get(ctx context.Context, deckID string) (*models.Deck, error) {
	var deck models.Deck
	err := s.collection.FindOne(ctx, bson.M{"_id": deckID}).Decode(&deck)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return &deck, nil
}

// UpdateStatus sets status, step and updated_at without touching slides
func (s *MongoDeckStore) UpdateStatus(ctx context.Context, deckID string, status models.DeckStatus, step string) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"step":       step,
		"updated_at": time.Now().UTC(),
	}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": deckID}, update)
	if err != nil {
		return fmt.Errorf("failed to update deck status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrDeckNotFound
	}
	return nil
}

// ListRecent returns decks ordered by created_at descending
func (s *MongoDeckStore) ListRecent(ctx context.Context, limit int) ([]*models.Deck, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer cursor.Close(ctx)

	var decks []*models.Deck
	if err := cursor.All(ctx, &decks); err != nil {
		return nil, fmt.Errorf("failed to decode decks: %w", err)
	}
	return decks, nil
}

// Delete removes a deck
func (s *MongoDeckStore) Delete(ctx context.Context, deckID string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": deckID})
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrDeckNotFound
	}
	return nil
}

// Close disconnects the underlying MongoDB client
func (s *MongoDeckStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *MongoDeckStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}
