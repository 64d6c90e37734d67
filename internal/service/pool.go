package service

import (
	"context"
	"fmt"

	"github.com/solpool/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// UpdatePoolMetadata upserts the pool aggregate. An unseen poolId gets a
// lazily created document with a 30-day active window; an existing one
// only has its counters incremented and metadata replaced.
func (s *Service) UpdatePoolMetadata(ctx context.Context, poolID string, metadata bson.M, participantDelta int64, pointsDelta float64) (*models.Pool, error) {
	pool, err := s.docs.UpsertPool(ctx, poolID, metadata, participantDelta, pointsDelta)
	if err != nil {
		return nil, fmt.Errorf("failed to update pool metadata: %w", err)
	}

	s.logger.Infof("Successfully updated pool metadata for pool %s", poolID)
	return pool, nil
}

func (s *Service) GetPoolMetadata(ctx context.Context, poolID string) (*models.Pool, error) {
	return s.docs.GetPool(ctx, poolID)
}
