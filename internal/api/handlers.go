package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, "ok")
}

func (s *Server) handleStats(c *gin.Context) {
	ok(c, s.engine.Stats())
}

func (s *Server) handleChainInfo(c *gin.Context) {
	ok(c, s.engine.ChainInfo())
}

func (s *Server) handleListBlocks(c *gin.Context) {
	var offset, limit int
	if v := c.Query("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}
	if v := c.Query("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	blocks, total := s.engine.ListBlocks(offset, limit)
	if blocks == nil {
		blocks = []pulsetypes.PulseBlock{}
	}
	ok(c, gin.H{"blocks": blocks, "total": total})
}

func (s *Server) handleLatestBlock(c *gin.Context) {
	blk, err := s.engine.LatestBlock()
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ok(c, blk)
}

func (s *Server) handleGetBlock(c *gin.Context) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	blk, err := s.engine.GetBlock(index)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ok(c, blk)
}

func (s *Server) handleBalance(c *gin.Context) {
	pubkey := c.Param("pubkey")
	ok(c, gin.H{"pubkey": pubkey, "balance": s.engine.Balance(pubkey)})
}

func (s *Server) handleAccounts(c *gin.Context) {
	ok(c, s.engine.Accounts())
}

func (s *Server) handlePulse(c *gin.Context) {
	var hb pulsetypes.Heartbeat
	if err := c.ShouldBindJSON(&hb); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.SubmitHeartbeat(hb); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ok(c, gin.H{})
}

func (s *Server) handleTx(c *gin.Context) {
	var tx pulsetypes.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.SubmitTransaction(tx); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ok(c, gin.H{})
}
