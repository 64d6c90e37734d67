package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/solpool/backend/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetTransactionBySignature(ctx context.Context, signature string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("signature = ?", signature).
		First(&txn).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}

// CreateTransaction inserts a ledger row. A duplicate signature surfaces
// as gorm.ErrDuplicatedKey, the row is never updated in place.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction, tx *gorm.DB) error {
	db := tx
	if tx == nil {
		db = r.db
	}

	if err := db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *Repository) ListTransactionsByWallet(ctx context.Context, walletAddress string, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).
		Error

	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %s: %w", walletAddress, err)
	}
	return txns, nil
}
