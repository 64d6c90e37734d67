package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PoolStatusActive    = "active"
	PoolStatusCompleted = "completed"
	PoolStatusCancelled = "cancelled"

	SpinStatusPending   = "pending"
	SpinStatusCompleted = "completed"
	SpinStatusFailed    = "failed"
)

// Pool aggregates per-pool metadata: counters are only ever incremented,
// the free-form metadata blob is replaced wholesale on every update.
type Pool struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PoolID           string             `bson:"poolId" json:"poolId"`
	Name             string             `bson:"name" json:"name"`
	TotalPoints      float64            `bson:"totalPoints" json:"totalPoints"`
	ParticipantCount int64              `bson:"participantCount" json:"participantCount"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"`
	EndDate          time.Time          `bson:"endDate" json:"endDate"`
	Status           string             `bson:"status" json:"status"`
	Metadata         bson.M             `bson:"metadata,omitempty" json:"metadata,omitempty"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type SpinResult struct {
	Points     float64  `bson:"points" json:"points"`
	Multiplier *float64 `bson:"multiplier,omitempty" json:"multiplier,omitempty"`
	Reward     *string  `bson:"reward,omitempty" json:"reward,omitempty"`
}

// SpinWheel is one recorded spin outcome. Immutable once written.
type SpinWheel struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WalletAddress        string             `bson:"walletAddress" json:"walletAddress"`
	PoolID               string             `bson:"poolId" json:"poolId"`
	Result               SpinResult         `bson:"result" json:"result"`
	Timestamp            time.Time          `bson:"timestamp" json:"timestamp"`
	TransactionSignature string             `bson:"transactionSignature,omitempty" json:"transactionSignature,omitempty"`
	Status               string             `bson:"status" json:"status"`
}
