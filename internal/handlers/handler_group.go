package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type accountGroupHandler struct {
	groupService portssvc.AccountGroupSvc
}

func registerAccountGroupRoutes(rg *gin.RouterGroup, groupService portssvc.AccountGroupSvc) {
	h := &accountGroupHandler{groupService: groupService}

	groups := rg.Group("/groups/:group/accounts")
	{
		groups.POST("", h.createAccount)
		groups.GET("", h.listAccounts)
		groups.GET("/:name", h.getAccount)
	}
}

// createAccount returns the named account, creating it on first use.
func (h *accountGroupHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	group := c.Param("group")
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGroupAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.groupService.CreateAccount(c.Request.Context(), group, req, principal)
	if err != nil {
		respondWithError(c, logger.With(slog.String("group", group)), err, "Failed to create account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountGroupHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	group := c.Param("group")

	names, err := h.groupService.ListAccounts(c.Request.Context(), group)
	if err != nil {
		respondWithError(c, logger.With(slog.String("group", group)), err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Group: group, Accounts: names})
}

func (h *accountGroupHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	group, name := c.Param("group"), c.Param("name")

	account, err := h.groupService.GetAccount(c.Request.Context(), group, name)
	if err != nil {
		respondWithError(c, logger.With(slog.String("group", group)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
