package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/solpool/backend/internal/models"
	"github.com/solpool/backend/internal/service"
	"github.com/solpool/backend/internal/solana"
	"github.com/solpool/backend/utils"
)

// PoolService is the write orchestrator surface the handlers need.
type PoolService interface {
	UpdateUserPoolData(ctx context.Context, params service.UpdateUserPoolDataParams) error
	GetPoolMetadata(ctx context.Context, poolID string) (*models.Pool, error)
	GetUserSpinHistory(ctx context.Context, walletAddress, poolID string) ([]models.SpinWheel, error)
}

// SolanaGateway proxies record operations to the on-chain program. A nil
// gateway leaves the /api/solana routes answering 503 while the pool
// routes keep serving.
type SolanaGateway interface {
	CreateRecord(ctx context.Context, walletAddress, data string) (string, error)
	UpdateRecord(ctx context.Context, recordAddress, walletAddress string, index uint64, newData string) (string, error)
	GetRecords(ctx context.Context, walletAddress string) ([]solana.Record, error)
}

type Server struct {
	service PoolService
	gateway SolanaGateway
	logger  *utils.Logger
	engine  *gin.Engine
}

func New(svc PoolService, gateway SolanaGateway, corsOrigin string, logger *utils.Logger) *Server {
	s := &Server{
		service: svc,
		gateway: gateway,
		logger:  logger,
	}
	s.engine = s.buildRouter(corsOrigin)
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) buildRouter(corsOrigin string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if corsOrigin != "" {
		corsConfig.AllowOrigins = []string{corsOrigin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	pool := api.Group("/pool")
	pool.POST("/update-user-data", s.updateUserData)
	pool.GET("/metadata/:poolId", s.getPoolMetadata)
	pool.GET("/spin-history/:walletAddress", s.getUserSpinHistory)

	sol := api.Group("/solana")
	sol.POST("/record", s.createRecord)
	sol.PUT("/record", s.updateRecord)
	sol.GET("/records/:walletAddress", s.getRecords)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Infof("%s %s - %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
