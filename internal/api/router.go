package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulsenetwork/pulsenoded/internal/chain"
)

// Server holds the chain engine and logger the route handlers close over.
type Server struct {
	engine *chain.Engine
	log    *zap.SugaredLogger
}

// NewRouter builds the *gin.Engine exposing the HTTP/WebSocket surface from
// spec §6.
func NewRouter(engine *chain.Engine, log *zap.SugaredLogger) *gin.Engine {
	s := &Server{engine: engine, log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)
	r.GET("/chain", s.handleChainInfo)
	r.GET("/blocks", s.handleListBlocks)
	r.GET("/block/latest", s.handleLatestBlock)
	r.GET("/block/:index", s.handleGetBlock)
	r.GET("/balance/:pubkey", s.handleBalance)
	r.GET("/accounts", s.handleAccounts)
	r.POST("/pulse", s.handlePulse)
	r.POST("/tx", s.handleTx)
	r.GET("/ws", s.handleWebsocket)

	return r
}
