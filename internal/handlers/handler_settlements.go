package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
	"github.com/SscSPs/splitsettle/internal/dto"
	"github.com/SscSPs/splitsettle/internal/middleware"
)

// settlementHandler handles HTTP requests for individual settlements.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// RegisterSettlementRoutes registers /settlements and the acting user's settlement listing.
func RegisterSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade, writeGuards ...gin.HandlerFunc) {
	h := &settlementHandler{settlementService: settlementService}

	settlements := rg.Group("/settlements")
	{
		settlements.POST("", guarded(writeGuards, h.createSettlement)...)
		settlements.GET("/:settlementID", h.getSettlement)
		settlements.PATCH("/:settlementID/status", guarded(writeGuards, h.updateStatus)...)
	}
	rg.GET("/users/me/settlements", h.listMySettlements)
}

func (h *settlementHandler) createSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.CreateSettlement(c.Request.Context(), actingUserID, req.ToRecordEntry(), domain.SettlementStatus(req.Status))
	if err != nil {
		respondError(c, logger, err, "Failed to create settlement")
		return
	}

	logger.Info("Settlement created", slog.String("settlement_id", settlement.SettlementID))
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(settlement))
}

func (h *settlementHandler) getSettlement(c *gin.Context) {
	settlementID := c.Param("settlementID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("settlement_id", settlementID))

	settlement, err := h.settlementService.GetSettlement(c.Request.Context(), settlementID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve settlement")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

func (h *settlementHandler) updateStatus(c *gin.Context) {
	settlementID := c.Param("settlementID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("settlement_id", settlementID))

	var req dto.UpdateSettlementStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSettlementStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.UpdateSettlementStatus(c.Request.Context(), settlementID, domain.SettlementStatus(req.Status), actingUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to update settlement status")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

func (h *settlementHandler) listMySettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListSettlementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListMySettlements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	direction, err := domain.ParseSettlementDirection(params.Direction)
	if err != nil {
		respondError(c, logger, err, "Invalid direction")
		return
	}
	filter := domain.SettlementFilter{UserID: actingUserID, Direction: direction}
	if filter.Status, err = statusFilter(params.Status); err != nil {
		respondError(c, logger, err, "Invalid status")
		return
	}

	page, err := h.settlementService.ListSettlements(c.Request.Context(), filter, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to list settlements")
		return
	}
	c.JSON(http.StatusOK, dto.ToListSettlementsResponse(page))
}

// statusFilter parses an optional status query value.
func statusFilter(raw string) (*domain.SettlementStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status, err := domain.ParseSettlementStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
