package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createRecordRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Data          string `json:"data" binding:"required"`
}

type updateRecordRequest struct {
	RecordAddress string  `json:"recordAddress" binding:"required"`
	WalletAddress string  `json:"walletAddress" binding:"required"`
	Index         *uint64 `json:"index" binding:"required"`
	NewData       string  `json:"newData" binding:"required"`
}

func (s *Server) gatewayReady(c *gin.Context) bool {
	if s.gateway == nil {
		c.JSON(http.StatusServiceUnavailable, response{
			Success: false,
			Error:   "Solana program not initialized. Please check your configuration and try again.",
		})
		return false
	}
	return true
}

func (s *Server) createRecord(c *gin.Context) {
	if !s.gatewayReady(c) {
		return
	}

	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Success: false, Error: err.Error()})
		return
	}

	sig, err := s.gateway.CreateRecord(c.Request.Context(), req.WalletAddress, req.Data)
	if err != nil {
		s.logger.Errorf("Error creating record: %v", err)
		c.JSON(http.StatusInternalServerError, response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response{Success: true, Data: gin.H{"signature": sig}})
}

func (s *Server) updateRecord(c *gin.Context) {
	if !s.gatewayReady(c) {
		return
	}

	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Success: false, Error: err.Error()})
		return
	}

	sig, err := s.gateway.UpdateRecord(c.Request.Context(), req.RecordAddress, req.WalletAddress, *req.Index, req.NewData)
	if err != nil {
		s.logger.Errorf("Error updating record: %v", err)
		c.JSON(http.StatusInternalServerError, response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response{Success: true, Data: gin.H{"signature": sig}})
}

func (s *Server) getRecords(c *gin.Context) {
	if !s.gatewayReady(c) {
		return
	}

	records, err := s.gateway.GetRecords(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		s.logger.Errorf("Error fetching records: %v", err)
		c.JSON(http.StatusInternalServerError, response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response{Success: true, Data: records})
}
