package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/solpool/backend/internal/models"
	"github.com/solpool/backend/internal/service"
	"go.mongodb.org/mongo-driver/bson"
)

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type spinWheelResultRequest struct {
	Points               float64  `json:"points"`
	Multiplier           *float64 `json:"multiplier"`
	Reward               *string  `json:"reward"`
	TransactionSignature string   `json:"transactionSignature"`
}

// PointsDelta and Amount are bound as pointers: zero is a valid delta,
// only absence is a validation error.
type updateUserDataRequest struct {
	WalletAddress        string                  `json:"walletAddress" binding:"required"`
	PointsDelta          *float64                `json:"pointsDelta" binding:"required"`
	PoolID               string                  `json:"poolId" binding:"required"`
	TransactionSignature string                  `json:"transactionSignature"`
	TransactionType      string                  `json:"transactionType"`
	Amount               *float64                `json:"amount"`
	PoolMetadata         map[string]interface{}  `json:"poolMetadata"`
	SpinWheelResult      *spinWheelResultRequest `json:"spinWheelResult"`
}

func (s *Server) updateUserData(c *gin.Context) {
	var req updateUserDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "Missing required fields: walletAddress, poolId, or pointsDelta",
			Error:   err.Error(),
		})
		return
	}

	params := service.UpdateUserPoolDataParams{
		UpdateUserPointsParams: service.UpdateUserPointsParams{
			WalletAddress:        req.WalletAddress,
			PointsDelta:          decimal.NewFromFloat(*req.PointsDelta),
			PoolID:               req.PoolID,
			TransactionSignature: req.TransactionSignature,
			TransactionType:      req.TransactionType,
		},
	}
	if req.Amount != nil {
		params.Amount = decimal.NewFromFloat(*req.Amount)
	}
	if req.PoolMetadata != nil {
		params.PoolMetadata = bson.M(req.PoolMetadata)
	}
	if req.SpinWheelResult != nil {
		params.SpinResult = &service.SpinResultParams{
			Points:               req.SpinWheelResult.Points,
			Multiplier:           req.SpinWheelResult.Multiplier,
			Reward:               req.SpinWheelResult.Reward,
			TransactionSignature: req.SpinWheelResult.TransactionSignature,
		}
	}

	if err := s.service.UpdateUserPoolData(c.Request.Context(), params); err != nil {
		if errors.Is(err, service.ErrDuplicateSignature) {
			c.JSON(http.StatusConflict, response{
				Success: false,
				Message: "Transaction already processed",
				Error:   err.Error(),
			})
			return
		}

		s.logger.Errorf("Error updating user pool data: %v", err)
		c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "Failed to update user data",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response{
		Success: true,
		Message: "Your points and transaction history have been successfully updated",
	})
}

func (s *Server) getPoolMetadata(c *gin.Context) {
	poolID := c.Param("poolId")

	pool, err := s.service.GetPoolMetadata(c.Request.Context(), poolID)
	if err != nil {
		s.logger.Errorf("Error fetching pool metadata: %v", err)
		c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "Failed to fetch pool metadata",
			Error:   err.Error(),
		})
		return
	}

	if pool == nil {
		c.JSON(http.StatusNotFound, response{
			Success: false,
			Message: "Pool not found",
		})
		return
	}

	c.JSON(http.StatusOK, response{Success: true, Data: pool})
}

func (s *Server) getUserSpinHistory(c *gin.Context) {
	walletAddress := c.Param("walletAddress")
	poolID := c.Query("poolId")

	history, err := s.service.GetUserSpinHistory(c.Request.Context(), walletAddress, poolID)
	if err != nil {
		s.logger.Errorf("Error fetching user spin history: %v", err)
		c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "Failed to fetch user spin history",
			Error:   err.Error(),
		})
		return
	}

	if history == nil {
		history = []models.SpinWheel{}
	}
	c.JSON(http.StatusOK, response{Success: true, Data: history})
}
