package service

import (
	"context"
	"time"

	"github.com/solpool/backend/internal/models"
)

const spinHistoryLimit = 50

// RecordSpinWheelResult inserts one spin outcome. Status is derived from
// signature presence at write time: signed spins are completed, unsigned
// ones stay pending. Resubmission is not deduplicated.
func (s *Service) RecordSpinWheelResult(ctx context.Context, walletAddress, poolID string, result SpinResultParams) error {
	status := models.SpinStatusPending
	if result.TransactionSignature != "" {
		status = models.SpinStatusCompleted
	}

	spin := &models.SpinWheel{
		WalletAddress: walletAddress,
		PoolID:        poolID,
		Result: models.SpinResult{
			Points:     result.Points,
			Multiplier: result.Multiplier,
			Reward:     result.Reward,
		},
		Timestamp:            time.Now().UTC(),
		TransactionSignature: result.TransactionSignature,
		Status:               status,
	}

	if err := s.docs.InsertSpin(ctx, spin); err != nil {
		return err
	}

	s.logger.Infof("Successfully recorded spin wheel result for wallet %s", walletAddress)
	return nil
}

func (s *Service) GetUserSpinHistory(ctx context.Context, walletAddress, poolID string) ([]models.SpinWheel, error) {
	return s.docs.ListSpinHistory(ctx, walletAddress, poolID, spinHistoryLimit)
}
