package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
	"github.com/SscSPs/splitsettle/internal/dto"
	"github.com/SscSPs/splitsettle/internal/middleware"
)

// expenseHandler handles HTTP requests for expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// RegisterExpenseRoutes registers the group expense collection and /expenses.
func RegisterExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, writeGuards ...gin.HandlerFunc) {
	h := &expenseHandler{expenseService: expenseService}

	rg.GET("/groups/:groupID/expenses", h.listExpenses)
	rg.POST("/groups/:groupID/expenses", guarded(writeGuards, h.createExpense)...)

	expenses := rg.Group("/expenses")
	{
		expenses.GET("/:expenseID", h.getExpense)
		expenses.PUT("/:expenseID", guarded(writeGuards, h.updateExpense)...)
		expenses.DELETE("/:expenseID", guarded(writeGuards, h.deleteExpense)...)
	}
}

func (h *expenseHandler) listExpenses(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	expenses, err := h.expenseService.ListGroupExpenses(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(groupID, expenses))
}

func (h *expenseHandler) createExpense(c *gin.Context) {
	groupID := c.Param("groupID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", groupID))

	var req dto.SaveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), actingUserID, req.ToExpense("", groupID))
	if err != nil {
		respondError(c, logger, err, "Failed to create expense")
		return
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

func (h *expenseHandler) getExpense(c *gin.Context) {
	expenseID := c.Param("expenseID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("expense_id", expenseID))

	expense, err := h.expenseService.GetExpense(c.Request.Context(), expenseID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

func (h *expenseHandler) updateExpense(c *gin.Context) {
	expenseID := c.Param("expenseID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("expense_id", expenseID))

	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), actingUserID, req.ToExpense(expenseID, req.GroupID))
	if err != nil {
		respondError(c, logger, err, "Failed to update expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

func (h *expenseHandler) deleteExpense(c *gin.Context) {
	expenseID := c.Param("expenseID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("expense_id", expenseID))

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), actingUserID, expenseID); err != nil {
		respondError(c, logger, err, "Failed to delete expense")
		return
	}
	c.Status(http.StatusNoContent)
}
