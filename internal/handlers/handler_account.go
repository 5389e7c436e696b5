package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/:uid", h.getAccount)
		accounts.PUT("/:uid/overdraft", h.setOverdraftLimit)
		accounts.PUT("/:uid/daily-limit", h.setMaximumDailyLimit)
		accounts.GET("/:uid/statement", h.listLineItems)
	}
}

// createAccount creates an account outside any group.
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, principal)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_uid", account.UID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount returns the account with its current balance status.
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	uid := c.Param("uid")
	logger = logger.With(slog.String("account_uid", uid))

	account, err := h.accountService.GetAccount(c.Request.Context(), uid)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve account")
		return
	}
	status, err := h.accountService.BalanceStatus(c.Request.Context(), uid)
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute account balance")
		return
	}

	c.JSON(http.StatusOK, dto.AccountBalanceResponse{Account: dto.ToAccountResponse(account), Status: status})
}

func (h *accountHandler) setOverdraftLimit(c *gin.Context) {
	h.setLimit(c, "overdraft", h.accountService.SetOverdraftLimit)
}

func (h *accountHandler) setMaximumDailyLimit(c *gin.Context) {
	h.setLimit(c, "daily", h.accountService.SetMaximumDailyLimit)
}

type setLimitFunc func(ctx context.Context, accountUID string, limit domain.BoundedDecimal, principal string) (domain.Account, error)

func (h *accountHandler) setLimit(c *gin.Context, kind string, set setLimitFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	uid := c.Param("uid")
	logger = logger.With(slog.String("account_uid", uid), slog.String("limit_kind", kind))

	var req dto.SetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetLimit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	limit, err := domain.ParseBoundedDecimal(req.Limit)
	if err != nil {
		respondWithError(c, logger, err, "Invalid limit")
		return
	}

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := set(c.Request.Context(), uid, limit, principal)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update limit")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listLineItems returns one page of the statement of a day.
func (h *accountHandler) listLineItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	uid := c.Param("uid")
	logger = logger.With(slog.String("account_uid", uid))

	var params dto.ListLineItemsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListLineItems", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	day := time.Now().UTC()
	if params.Day != "" {
		parsed, err := time.Parse(domain.DayFormat, params.Day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be formatted as YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	resp, err := h.accountService.ListLineItems(c.Request.Context(), uid, day, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list statement")
		return
	}
	c.JSON(http.StatusOK, resp)
}
