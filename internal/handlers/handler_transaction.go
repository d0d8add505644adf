package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
)

// transactionHandler handles HTTP requests related to ledger entries.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to ledger entries.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/spend", h.spend)
		transactions.POST("/add-funds", h.addFunds)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
		transactions.DELETE("/:id", h.deleteTransaction)
	}
}

func (h *transactionHandler) spend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req dto.SpendRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.Info("Received spend request",
		slog.String("envelope_name", req.Envelope),
		slog.Float64("amount", req.Amount))

	txn, err := h.transactionService.Spend(c.Request.Context(), req.Envelope, req.Amount, req.Description, userID, req.RefID)
	if err != nil {
		respondServiceError(c, err, "Failed to record spend")
		return
	}

	logger.Info("Spend recorded", slog.Int64("transaction_id", txn.ID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) addFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	var req dto.AddFundsRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.Info("Received add-funds request",
		slog.String("envelope_name", req.Envelope),
		slog.Float64("amount", req.Amount))

	txn, err := h.transactionService.AddFunds(c.Request.Context(), req.Envelope, req.Amount, req.Description, userID, req.RefID)
	if err != nil {
		respondServiceError(c, err, "Failed to add funds")
		return
	}

	logger.Info("Funds added", slog.Int64("transaction_id", txn.ID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid transaction ID"})
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	envelopeName := c.Query("envelope")
	if envelopeName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "envelope query parameter required"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.transactionService.ListTransactions(c.Request.Context(), envelopeName, userID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionResponse(txns))
}

func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid transaction ID"})
		return
	}

	removed, err := h.transactionService.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to delete transaction")
		return
	}

	logger.Info("Transaction deleted", slog.Int64("transaction_id", removed.ID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(removed))
}
