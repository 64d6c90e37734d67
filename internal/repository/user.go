package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/solpool/backend/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "wallet_address = ?", walletAddress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by wallet %s: %w", walletAddress, err)
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User, tx *gorm.DB) error {
	db := tx
	if tx == nil {
		db = r.db
	}

	return db.WithContext(ctx).Create(user).Error
}

// AddUserPoints applies the delta in-place so concurrent requests never
// read-modify-write a stale balance. Returns the number of matched rows;
// zero means the wallet has no user row yet.
func (r *Repository) AddUserPoints(ctx context.Context, walletAddress string, delta decimal.Decimal, tx *gorm.DB) (int64, error) {
	db := tx
	if tx == nil {
		db = r.db
	}

	res := db.WithContext(ctx).
		Model(&models.User{}).
		Where("wallet_address = ?", walletAddress).
		UpdateColumn("points", gorm.Expr("points + ?", delta))

	if res.Error != nil {
		return 0, fmt.Errorf("failed to update points for wallet %s: %w", walletAddress, res.Error)
	}
	return res.RowsAffected, nil
}
