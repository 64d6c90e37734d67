package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	WalletAddress string          `gorm:"size:44;uniqueIndex;not null" json:"wallet_address"`
	Username      string          `gorm:"size:50" json:"username"`
	Email         string          `gorm:"size:255" json:"email"`
	Points        decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"points"`
	CreatedAt     time.Time       `json:"created_at"`

	Transactions []Transaction `gorm:"foreignKey:WalletAddress;references:WalletAddress" json:"transactions,omitempty"`
}

// Transaction is the append-only ledger row. Signature is a pointer so
// unsigned actions insert NULL instead of tripping the unique index.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	WalletAddress string          `gorm:"size:44;not null;index" json:"wallet_address"`
	Signature     *string         `gorm:"size:88;uniqueIndex" json:"signature,omitempty"`
	Type          string          `gorm:"size:50;not null" json:"type"`
	Status        string          `gorm:"size:20;not null" json:"status"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,9)" json:"amount"`
	PointsDelta   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"points_delta"`
	PoolID        string          `gorm:"size:50" json:"pool_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

const (
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"

	TransactionTypeDefault = "points_update"
)
