package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solpool/backend/internal/models"
	"github.com/solpool/backend/internal/repository"
	"github.com/solpool/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// fakeDocs mimics the mongo upsert semantics in memory so the
// orchestrator can be exercised without a running document store.
type fakeDocs struct {
	pools map[string]*models.Pool
	spins []models.SpinWheel

	upsertErr error
	insertErr error

	lastHistoryLimit int64
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{pools: make(map[string]*models.Pool)}
}

func (f *fakeDocs) UpsertPool(_ context.Context, poolID string, metadata bson.M, participantDelta int64, pointsDelta float64) (*models.Pool, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	now := time.Now().UTC()
	pool, ok := f.pools[poolID]
	if !ok {
		pool = &models.Pool{
			PoolID:    poolID,
			Name:      fmt.Sprintf("Pool %s", poolID),
			StartDate: now,
			EndDate:   now.Add(30 * 24 * time.Hour),
			Status:    models.PoolStatusActive,
		}
		f.pools[poolID] = pool
	}
	pool.Metadata = metadata
	pool.ParticipantCount += participantDelta
	pool.TotalPoints += pointsDelta
	pool.UpdatedAt = now
	return pool, nil
}

func (f *fakeDocs) GetPool(_ context.Context, poolID string) (*models.Pool, error) {
	return f.pools[poolID], nil
}

func (f *fakeDocs) InsertSpin(_ context.Context, spin *models.SpinWheel) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.spins = append(f.spins, *spin)
	return nil
}

func (f *fakeDocs) ListSpinHistory(_ context.Context, walletAddress, poolID string, limit int64) ([]models.SpinWheel, error) {
	f.lastHistoryLimit = limit
	var out []models.SpinWheel
	for _, spin := range f.spins {
		if spin.WalletAddress != walletAddress {
			continue
		}
		if poolID != "" && spin.PoolID != poolID {
			continue
		}
		out = append(out, spin)
	}
	return out, nil
}

type fakeNotifier struct {
	wallets []string
	pools   []string
	causes  []error
}

func (f *fakeNotifier) StoreDivergence(walletAddress, poolID string, cause error) {
	f.wallets = append(f.wallets, walletAddress)
	f.pools = append(f.pools, poolID)
	f.causes = append(f.causes, cause)
}

func setupService(t *testing.T) (*Service, *repository.Repository, *fakeDocs, *fakeNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Transaction{}))

	logger := utils.InitLogger("error")
	repo := repository.NewRepository(db, logger)
	docs := newFakeDocs()
	alerts := &fakeNotifier{}

	return NewService(repo, docs, alerts, logger), repo, docs, alerts
}

func TestUpdateUserPoints_NewWallet_CreatesUserWithDelta(t *testing.T) {
	svc, repo, _, _ := setupService(t)
	ctx := context.Background()

	err := svc.UpdateUserPoints(ctx, UpdateUserPointsParams{
		WalletAddress:        "W1",
		PointsDelta:          decimal.NewFromInt(10),
		PoolID:               "P1",
		TransactionSignature: "S1",
		TransactionType:      "spin",
	})
	require.NoError(t, err)

	user, err := repo.GetUserByWallet(ctx, "W1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Points.Equal(decimal.NewFromInt(10)))

	txn, err := repo.GetTransactionBySignature(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, "spin", txn.Type)
	assert.Equal(t, "P1", txn.PoolID)
	assert.True(t, txn.PointsDelta.Equal(decimal.NewFromInt(10)))
}

func TestUpdateUserPoints_ExistingWallet_BalanceIsAdditive(t *testing.T) {
	svc, repo, _, _ := setupService(t)
	ctx := context.Background()

	for i, delta := range []int64{10, 5, -3} {
		err := svc.UpdateUserPoints(ctx, UpdateUserPointsParams{
			WalletAddress:        "W1",
			PointsDelta:          decimal.NewFromInt(delta),
			PoolID:               "P1",
			TransactionSignature: fmt.Sprintf("S%d", i),
		})
		require.NoError(t, err)
	}

	user, err := repo.GetUserByWallet(ctx, "W1")
	require.NoError(t, err)
	assert.True(t, user.Points.Equal(decimal.NewFromInt(12)), "expected 12, got %s", user.Points)
}

func TestUpdateUserPoints_ZeroDeltaIsValid(t *testing.T) {
	svc, repo, _, _ := setupService(t)
	ctx := context.Background()

	err := svc.UpdateUserPoints(ctx, UpdateUserPointsParams{
		WalletAddress:        "W1",
		PointsDelta:          decimal.Zero,
		PoolID:               "P1",
		TransactionSignature: "S1",
	})
	require.NoError(t, err)

	user, err := repo.GetUserByWallet(ctx, "W1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Points.IsZero())
}

func TestUpdateUserPoints_DuplicateSignature_KeepsFirstWrite(t *testing.T) {
	svc, repo, _, _ := setupService(t)
	ctx := context.Background()

	params := UpdateUserPointsParams{
		WalletAddress:        "W1",
		PointsDelta:          decimal.NewFromInt(10),
		PoolID:               "P1",
		TransactionSignature: "S1",
	}
	require.NoError(t, svc.UpdateUserPoints(ctx, params))

	err := svc.UpdateUserPoints(ctx, params)
	assert.ErrorIs(t, err, ErrDuplicateSignature)

	// the rejected call must roll back its points update too
	user, err := repo.GetUserByWallet(ctx, "W1")
	require.NoError(t, err)
	assert.True(t, user.Points.Equal(decimal.NewFromInt(10)), "expected 10, got %s", user.Points)
}

func TestUpdateUserPoints_EmptyTypeGetsDefault(t *testing.T) {
	svc, repo, _, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateUserPoints(ctx, UpdateUserPointsParams{
		WalletAddress:        "W1",
		PointsDelta:          decimal.NewFromInt(1),
		PoolID:               "P1",
		TransactionSignature: "S1",
	}))

	txn, err := repo.GetTransactionBySignature(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeDefault, txn.Type)
}

func TestUpdateUserPoolData_FullScenario(t *testing.T) {
	svc, repo, docs, _ := setupService(t)
	ctx := context.Background()

	err := svc.UpdateUserPoolData(ctx, UpdateUserPoolDataParams{
		UpdateUserPointsParams: UpdateUserPointsParams{
			WalletAddress:        "W1",
			PointsDelta:          decimal.NewFromInt(10),
			PoolID:               "P1",
			TransactionSignature: "S1",
			TransactionType:      "spin",
		},
		PoolMetadata: bson.M{},
		SpinResult:   &SpinResultParams{Points: 10},
	})
	require.NoError(t, err)

	user, err := repo.GetUserByWallet(ctx, "W1")
	require.NoError(t, err)
	assert.True(t, user.Points.Equal(decimal.NewFromInt(10)))

	txn, err := repo.GetTransactionBySignature(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, txn)

	pool := docs.pools["P1"]
	require.NotNil(t, pool)
	assert.Equal(t, int64(1), pool.ParticipantCount)
	assert.Equal(t, float64(10), pool.TotalPoints)
	assert.Equal(t, models.PoolStatusActive, pool.Status)

	require.Len(t, docs.spins, 1)
	spin := docs.spins[0]
	assert.Equal(t, "W1", spin.WalletAddress)
	assert.Equal(t, "P1", spin.PoolID)
	assert.Equal(t, float64(10), spin.Result.Points)
	// no signature was passed into the spin record itself
	assert.Equal(t, models.SpinStatusPending, spin.Status)
	assert.Empty(t, spin.TransactionSignature)
}

func TestUpdateUserPoolData_OptionalSideEffectsSkipped(t *testing.T) {
	svc, _, docs, _ := setupService(t)

	err := svc.UpdateUserPoolData(context.Background(), UpdateUserPoolDataParams{
		UpdateUserPointsParams: UpdateUserPointsParams{
			WalletAddress:        "W1",
			PointsDelta:          decimal.NewFromInt(10),
			PoolID:               "P1",
			TransactionSignature: "S1",
		},
	})
	require.NoError(t, err)

	assert.Empty(t, docs.pools)
	assert.Empty(t, docs.spins)
}

func TestUpdateUserPoolData_PoolCountersAccumulate(t *testing.T) {
	svc, _, docs, _ := setupService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := svc.UpdateUserPoolData(ctx, UpdateUserPoolDataParams{
			UpdateUserPointsParams: UpdateUserPointsParams{
				WalletAddress:        "W1",
				PointsDelta:          decimal.NewFromInt(10),
				PoolID:               "P1",
				TransactionSignature: fmt.Sprintf("S%d", i),
			},
			PoolMetadata: bson.M{"round": i},
		})
		require.NoError(t, err)
	}

	pool := docs.pools["P1"]
	require.NotNil(t, pool)
	assert.Equal(t, int64(2), pool.ParticipantCount)
	assert.Equal(t, float64(20), pool.TotalPoints)
	assert.Equal(t, bson.M{"round": 1}, pool.Metadata, "metadata is replaced, not merged")
}

func TestUpdateUserPoolData_DocumentFailureReportsDivergence(t *testing.T) {
	svc, repo, docs, alerts := setupService(t)
	ctx := context.Background()

	docs.upsertErr = errors.New("mongo unavailable")

	err := svc.UpdateUserPoolData(ctx, UpdateUserPoolDataParams{
		UpdateUserPointsParams: UpdateUserPointsParams{
			WalletAddress:        "W1",
			PointsDelta:          decimal.NewFromInt(10),
			PoolID:               "P1",
			TransactionSignature: "S1",
		},
		PoolMetadata: bson.M{},
	})
	require.Error(t, err)

	// ledger already committed, no compensation
	user, err2 := repo.GetUserByWallet(ctx, "W1")
	require.NoError(t, err2)
	require.NotNil(t, user)
	assert.True(t, user.Points.Equal(decimal.NewFromInt(10)))

	require.Len(t, alerts.wallets, 1)
	assert.Equal(t, "W1", alerts.wallets[0])
	assert.Equal(t, "P1", alerts.pools[0])
}

func TestRecordSpinWheelResult_SignedSpinIsCompleted(t *testing.T) {
	svc, _, docs, _ := setupService(t)

	err := svc.RecordSpinWheelResult(context.Background(), "W1", "P1", SpinResultParams{
		Points:               25,
		TransactionSignature: "S1",
	})
	require.NoError(t, err)

	require.Len(t, docs.spins, 1)
	assert.Equal(t, models.SpinStatusCompleted, docs.spins[0].Status)
	assert.Equal(t, "S1", docs.spins[0].TransactionSignature)
}

func TestGetUserSpinHistory_CappedAtFifty(t *testing.T) {
	svc, _, docs, _ := setupService(t)

	_, err := svc.GetUserSpinHistory(context.Background(), "W1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(50), docs.lastHistoryLimit)
}

func TestGetUserSpinHistory_FiltersByPool(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSpinWheelResult(ctx, "W1", "P1", SpinResultParams{Points: 1}))
	require.NoError(t, svc.RecordSpinWheelResult(ctx, "W1", "P2", SpinResultParams{Points: 2}))

	history, err := svc.GetUserSpinHistory(ctx, "W1", "P2")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "P2", history[0].PoolID)
}
