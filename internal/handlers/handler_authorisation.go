package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type authorisationHandler struct {
	issuer portssvc.AuthorisationIssuer
}

func registerAuthorisationRoutes(rg *gin.RouterGroup, issuer portssvc.AuthorisationIssuer) {
	h := &authorisationHandler{issuer: issuer}
	rg.POST("/authorisations", h.issue)
}

// issue signs an authorisation over one account for the calling principal.
func (h *authorisationHandler) issue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.IssueAuthorisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for IssueAuthorisation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		logger.Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resource := domain.AccountResource(req.AccountUID)
	auth, err := h.issuer.Issue(c.Request.Context(), principal, resource)
	if err != nil {
		respondWithError(c, logger, err, "Failed to issue authorisation")
		return
	}

	logger.Info("Authorisation issued", slog.String("resource", resource))
	c.JSON(http.StatusCreated, dto.AuthorisationResponse{Authorisation: auth.Token, Resource: resource})
}
