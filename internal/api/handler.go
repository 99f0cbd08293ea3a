package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/store"
)

type verifyRequest struct {
	InputType string `json:"input_type" binding:"required,oneof=text url"`
	RawInput  string `json:"raw_input" binding:"required"`
	UserID    string `json:"user_id"`
}

type claimHandler struct {
	verifier Verifier
	logger   *zap.Logger
	timeout  time.Duration
}

// Verify handles POST /verify
func (h *claimHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inputType, err := model.ParseInputType(req.InputType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.RawInput) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raw_input must not be blank"})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.verifier.Verify(ctx, model.VerifyRequest{
		InputType: inputType,
		RawInput:  req.RawInput,
		UserID:    req.UserID,
	})
	if err != nil {
		h.logger.Error("verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetClaim handles GET /claims/:id
func (h *claimHandler) GetClaim(c *gin.Context) {
	details, err := h.verifier.GetClaim(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
		return
	}
	if err != nil {
		h.logger.Error("get claim failed", zap.String("claim_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get claim: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, details)
}
