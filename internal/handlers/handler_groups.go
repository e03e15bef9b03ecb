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

// groupHandler serves the derived balance views of a group and its settlements.
type groupHandler struct {
	balanceService    portssvc.BalanceSvcFacade
	settlementService portssvc.SettlementSvcFacade
}

// RegisterGroupRoutes registers the /groups routes. writeGuards run before every
// mutating route.
func RegisterGroupRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade, settlementService portssvc.SettlementSvcFacade, writeGuards ...gin.HandlerFunc) {
	h := &groupHandler{balanceService: balanceService, settlementService: settlementService}

	groups := rg.Group("/groups/:groupID")
	{
		groups.GET("/balances", h.getBalances)
		groups.GET("/plan", h.getPlan)
		groups.GET("/suggestions", h.getSuggestions)
		groups.GET("/settlements", h.listSettlements)
		groups.POST("/settlements", guarded(writeGuards, h.recordSettlements)...)
		groups.POST("/invalidate", guarded(writeGuards, h.invalidate)...)
	}
}

func (h *groupHandler) getBalances(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	balances, err := h.balanceService.GetGroupBalances(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupBalancesResponse(groupID, balances))
}

func (h *groupHandler) getPlan(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	plan, err := h.balanceService.GetSettlementPlan(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute settlement plan")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementPlanResponse(plan))
}

func (h *groupHandler) getSuggestions(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	suggestions, err := h.balanceService.GetSettlementSuggestions(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute settlement suggestions")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementSuggestionsResponse(groupID, suggestions))
}

func (h *groupHandler) listSettlements(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	var params dto.ListSettlementsParams
	err := c.ShouldBindQuery(&params)
	if err != nil {
		logger.Warn("Failed to bind query params for ListSettlements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	filter := domain.SettlementFilter{GroupID: groupID}
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

func (h *groupHandler) recordSettlements(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	var req dto.RecordSettlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordSettlements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	results := h.settlementService.RecordSettlements(c.Request.Context(), actingUserID, req.ToRecordEntries(groupID))
	resp := dto.ToRecordSettlementsResponse(results)
	logger.Info("Recorded settlements", slog.Int("succeeded", resp.Succeeded), slog.Int("failed", resp.Failed))
	c.JSON(recordBatchStatus(results), resp)
}

func (h *groupHandler) invalidate(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	if err := h.balanceService.NotifyExpensesChanged(c.Request.Context(), groupID); err != nil {
		respondError(c, logger, err, "Failed to announce ledger change")
		return
	}
	c.Status(http.StatusNoContent)
}
