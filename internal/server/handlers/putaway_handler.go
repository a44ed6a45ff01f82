package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/putaway"
)

// PutawayHandler exposes the batch run and recommendation lookups over HTTP.
type PutawayHandler struct {
	svc    *putaway.Service
	logger *zap.Logger
}

// NewPutawayHandler constructs the HTTP handler adapter.
func NewPutawayHandler(svc *putaway.Service, logger *zap.Logger) *PutawayHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PutawayHandler{svc: svc, logger: logger}
}

// Run triggers a full batch run and returns its summary.
func (h *PutawayHandler) Run(c *gin.Context) {
	summary, err := h.svc.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, putaway.ErrRunInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "a run is already in flight"})
			return
		}
		h.logger.Error("putaway run failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type recommendRequest struct {
	ProductID    string `json:"product_id" binding:"required"`
	ProductOwner string `json:"product_owner"`
}

// Recommend returns the engine's decision for a product/owner pair without
// moving anything.
func (h *PutawayHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid recommend payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	decision, err := h.svc.Recommend(c.Request.Context(), req.ProductID, req.ProductOwner)
	if err != nil {
		h.logger.Error("recommendation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// LatestRun returns the summary of the most recently completed run.
func (h *PutawayHandler) LatestRun(c *gin.Context) {
	summary, ok := h.svc.LastSummary()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed runs yet"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
