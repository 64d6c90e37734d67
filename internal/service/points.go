package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/solpool/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
)

type UpdateUserPointsParams struct {
	WalletAddress        string
	PointsDelta          decimal.Decimal
	PoolID               string
	TransactionSignature string
	TransactionType      string
	Amount               decimal.Decimal
}

type SpinResultParams struct {
	Points               float64
	Multiplier           *float64
	Reward               *string
	TransactionSignature string
}

type UpdateUserPoolDataParams struct {
	UpdateUserPointsParams

	// Optional side effects, applied only when present in the request.
	PoolMetadata bson.M
	SpinResult   *SpinResultParams
}

// UpdateUserPoints applies the delta to the user's balance (creating the
// user on first contact) and appends the ledger row, in one relational
// transaction. No retry: a transient store error fails the whole call.
func (s *Service) UpdateUserPoints(ctx context.Context, params UpdateUserPointsParams) error {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Panic occurred: %v", r)
			s.repo.Rollback(tx)
		}
	}()

	rows, err := s.repo.AddUserPoints(ctx, params.WalletAddress, params.PointsDelta, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return err
	}

	if rows == 0 {
		user := &models.User{
			WalletAddress: params.WalletAddress,
			Points:        params.PointsDelta,
		}
		if err := s.repo.CreateUser(ctx, user, tx); err != nil {
			s.logger.Errorf("Failed to create user %s: %v", params.WalletAddress, err)
			s.repo.Rollback(tx)
			return fmt.Errorf("failed to create user: %w", err)
		}
	}

	txnType := params.TransactionType
	if txnType == "" {
		txnType = models.TransactionTypeDefault
	}

	txn := &models.Transaction{
		WalletAddress: params.WalletAddress,
		Type:          txnType,
		Status:        models.TransactionStatusCompleted,
		Amount:        params.Amount,
		PointsDelta:   params.PointsDelta,
		PoolID:        params.PoolID,
	}
	if params.TransactionSignature != "" {
		sig := params.TransactionSignature
		txn.Signature = &sig
	}

	if err := s.repo.CreateTransaction(ctx, txn, tx); err != nil {
		s.repo.Rollback(tx)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateSignature, params.TransactionSignature)
		}
		return err
	}

	if err := s.repo.Commit(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Successfully updated points for wallet %s (delta %s)", params.WalletAddress, params.PointsDelta)
	return nil
}

// UpdateUserPoolData runs the full write path for one logical action:
// ledger first, then the optional document-store side effects. The
// document writes are best-effort relative to the committed ledger; a
// failure there is reported as divergence and surfaced to the caller.
func (s *Service) UpdateUserPoolData(ctx context.Context, params UpdateUserPoolDataParams) error {
	if err := s.UpdateUserPoints(ctx, params.UpdateUserPointsParams); err != nil {
		return err
	}

	if params.PoolMetadata != nil {
		pointsDelta, _ := params.PointsDelta.Float64()
		if _, err := s.UpdatePoolMetadata(ctx, params.PoolID, params.PoolMetadata, 1, pointsDelta); err != nil {
			s.reportDivergence(params.WalletAddress, params.PoolID, err)
			return fmt.Errorf("pool metadata update failed after ledger commit: %w", err)
		}
	}

	if params.SpinResult != nil {
		if err := s.RecordSpinWheelResult(ctx, params.WalletAddress, params.PoolID, *params.SpinResult); err != nil {
			s.reportDivergence(params.WalletAddress, params.PoolID, err)
			return fmt.Errorf("spin result record failed after ledger commit: %w", err)
		}
	}

	return nil
}

func (s *Service) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.repo.GetUserByWallet(ctx, walletAddress)
}
