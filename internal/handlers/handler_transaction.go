package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	ledgerService portssvc.LedgerSvc
}

func newTransactionHandler(ls portssvc.LedgerSvc) *transactionHandler {
	return &transactionHandler{ledgerService: ls}
}

// registerTransactionRoutes registers perform, settlement and lookup routes.
// Transaction UIDs contain slashes, so lookups use a wildcard.
func registerTransactionRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvc) {
	h := newTransactionHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.perform)
		transactions.POST("/receipt", h.receipt)
		transactions.POST("/refund", h.refund)
		transactions.GET("/*uid", h.getTransaction)
	}
}

func (h *transactionHandler) perform(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PerformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Perform", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(
		slog.String("debit_account_uid", req.DebitAccountUID),
		slog.String("credit_account_uid", req.CreditAccountUID))

	txs := make([]domain.Transaction, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		value, err := domain.ParseBoundedDecimal(t.Value)
		if err != nil {
			respondWithError(c, logger, err, "Invalid transaction value")
			return
		}
		tx, err := domain.NewTransaction(value, t.Description)
		if err != nil {
			respondWithError(c, logger, err, "Invalid transaction")
			return
		}
		txs = append(txs, tx)
	}

	records, err := h.ledgerService.Perform(c.Request.Context(), txs, req.DebitAccountUID, req.CreditAccountUID,
		domain.Authorisation{Token: req.Authorisation}, req.IsProvisional)
	if err != nil {
		respondWithError(c, logger, err, "Failed to perform transactions")
		return
	}

	logger.Info("Transactions performed", slog.Int("count", len(records)))
	c.JSON(http.StatusCreated, dto.PerformResponse{Records: records})
}

func (h *transactionHandler) receipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Receipt", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("transaction_uid", req.CreditNote.DebitNoteUID))

	value, err := domain.ParseBoundedDecimal(req.ReceiptedValue)
	if err != nil {
		respondWithError(c, logger, err, "Invalid receipted value")
		return
	}
	receipt, err := domain.NewReceipt(req.CreditNote, domain.Authorisation{Token: req.Authorisation}, value)
	if err != nil {
		respondWithError(c, logger, err, "Invalid receipt")
		return
	}

	record, err := h.ledgerService.Receipt(c.Request.Context(), receipt)
	if err != nil {
		respondWithError(c, logger, err, "Failed to receipt transaction")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *transactionHandler) refund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Refund", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("transaction_uid", req.CreditNote.DebitNoteUID))

	refund, err := domain.NewRefund(req.CreditNote, domain.Authorisation{Token: req.Authorisation})
	if err != nil {
		respondWithError(c, logger, err, "Invalid refund")
		return
	}

	record, err := h.ledgerService.Refund(c.Request.Context(), refund)
	if err != nil {
		respondWithError(c, logger, err, "Failed to refund transaction")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	uid := strings.TrimPrefix(c.Param("uid"), "/")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction uid is required"})
		return
	}

	record, err := h.ledgerService.LoadTransaction(c.Request.Context(), uid)
	if err != nil {
		respondWithError(c, logger.With(slog.String("transaction_uid", uid)), err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, record)
}
