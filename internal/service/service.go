package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/solpool/backend/internal/models"
	"github.com/solpool/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
)

// ErrDuplicateSignature marks a resubmitted transaction signature. The
// ledger keeps only the first write; callers map this to "already
// processed" instead of a raw constraint error.
var ErrDuplicateSignature = errors.New("transaction signature already processed")

type Service struct {
	repo     Repository
	docs     DocumentStore
	notifier Notifier
	logger   *utils.Logger
}

type Repository interface {
	GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, tx *gorm.DB) error
	AddUserPoints(ctx context.Context, walletAddress string, delta decimal.Decimal, tx *gorm.DB) (int64, error)

	GetTransactionBySignature(ctx context.Context, signature string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, txn *models.Transaction, tx *gorm.DB) error
	ListTransactionsByWallet(ctx context.Context, walletAddress string, limit int) ([]models.Transaction, error)

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

type DocumentStore interface {
	UpsertPool(ctx context.Context, poolID string, metadata bson.M, participantDelta int64, pointsDelta float64) (*models.Pool, error)
	GetPool(ctx context.Context, poolID string) (*models.Pool, error)
	InsertSpin(ctx context.Context, spin *models.SpinWheel) error
	ListSpinHistory(ctx context.Context, walletAddress, poolID string, limit int64) ([]models.SpinWheel, error)
}

// Notifier receives store-divergence alerts: the relational ledger
// committed but a follow-up document write failed.
type Notifier interface {
	StoreDivergence(walletAddress, poolID string, cause error)
}

func NewService(repo Repository, docs DocumentStore, notifier Notifier, logger *utils.Logger) *Service {
	return &Service{
		repo:     repo,
		docs:     docs,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) reportDivergence(walletAddress, poolID string, cause error) {
	s.logger.Errorf("Store divergence for wallet %s pool %s: ledger committed but document write failed: %v", walletAddress, poolID, cause)
	if s.notifier != nil {
		s.notifier.StoreDivergence(walletAddress, poolID, cause)
	}
}
