package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solpool/backend/db"
	"github.com/solpool/backend/internal/models"
	"github.com/solpool/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPoolWindow = 30 * 24 * time.Hour

// DocumentStore is the MongoDB side of the store pair: pool aggregates
// and spin-wheel history. Writes here are never transactional with the
// relational ledger.
type DocumentStore struct {
	pools  *mongo.Collection
	spins  *mongo.Collection
	logger *utils.Logger
}

func NewDocumentStore(database *mongo.Database, logger *utils.Logger) *DocumentStore {
	return &DocumentStore{
		pools:  database.Collection(db.PoolCollection),
		spins:  database.Collection(db.SpinWheelCollection),
		logger: logger,
	}
}

// buildPoolUpdate assembles the upsert document: metadata is replaced,
// counters are incremented, defaults only apply when the pool is new.
func buildPoolUpdate(poolID string, metadata bson.M, participantDelta int64, pointsDelta float64, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"metadata":  metadata,
			"updatedAt": now,
		},
		"$inc": bson.M{
			"participantCount": participantDelta,
			"totalPoints":      pointsDelta,
		},
		"$setOnInsert": bson.M{
			"name":      fmt.Sprintf("Pool %s", poolID),
			"startDate": now,
			"endDate":   now.Add(defaultPoolWindow),
			"status":    models.PoolStatusActive,
		},
	}
}

func (s *DocumentStore) UpsertPool(ctx context.Context, poolID string, metadata bson.M, participantDelta int64, pointsDelta float64) (*models.Pool, error) {
	update := buildPoolUpdate(poolID, metadata, participantDelta, pointsDelta, time.Now().UTC())

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var pool models.Pool
	err := s.pools.FindOneAndUpdate(ctx, bson.M{"poolId": poolID}, update, opts).Decode(&pool)
	if err != nil {
		s.logger.Errorf("Failed to upsert pool %s: %v", poolID, err)
		return nil, fmt.Errorf("failed to upsert pool %s: %w", poolID, err)
	}

	return &pool, nil
}

func (s *DocumentStore) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	var pool models.Pool
	err := s.pools.FindOne(ctx, bson.M{"poolId": poolID}).Decode(&pool)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %s: %w", poolID, err)
	}
	return &pool, nil
}

func (s *DocumentStore) InsertSpin(ctx context.Context, spin *models.SpinWheel) error {
	res, err := s.spins.InsertOne(ctx, spin)
	if err != nil {
		s.logger.Errorf("Failed to insert spin for wallet %s: %v", spin.WalletAddress, err)
		return fmt.Errorf("failed to insert spin result: %w", err)
	}

	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		s.logger.Debugf("Inserted spin %s for wallet %s", oid.Hex(), spin.WalletAddress)
	}
	return nil
}

func (s *DocumentStore) ListSpinHistory(ctx context.Context, walletAddress, poolID string, limit int64) ([]models.SpinWheel, error) {
	filter := bson.M{"walletAddress": walletAddress}
	if poolID != "" {
		filter["poolId"] = poolID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.spins.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query spin history for wallet %s: %w", walletAddress, err)
	}
	defer cursor.Close(ctx)

	var history []models.SpinWheel
	if err := cursor.All(ctx, &history); err != nil {
		return nil, fmt.Errorf("failed to decode spin history: %w", err)
	}
	return history, nil
}
