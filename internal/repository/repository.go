package repository

import (
	"github.com/solpool/backend/utils"
	"gorm.io/gorm"
)

// Repository is the relational (PostgreSQL) side of the store pair.
type Repository struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewRepository(db *gorm.DB, logger *utils.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}
