package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// RegisterReconciliationRoutes registers the bank feed and reconciliation routes.
func RegisterReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconciliationService: reconciliationService}

	rg.POST("/bank-transactions", h.recordBankTransaction)
	rg.GET("/bank-accounts/:accountID/unreconciled", h.listUnreconciled)

	recon := rg.Group("/reconciliations")
	{
		recon.POST("/preview", h.previewReconciliation)
		recon.POST("", h.completeReconciliation)
	}
}

// recordBankTransaction godoc
// @Summary Record a bank transaction
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateBankTransactionRequest true "Bank transaction"
// @Success 201 {object} dto.BankTransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Bank account not found"
// @Security BearerAuth
// @Router /bank-transactions [post]
func (h *reconciliationHandler) recordBankTransaction(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.CreateBankTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for RecordBankTransaction")
		return
	}

	txn, err := h.reconciliationService.RecordBankTransaction(c.Request.Context(), rc, req)
	if err != nil {
		handleServiceError(c, err, "Failed to record bank transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBankTransactionResponse(txn))
}

// listUnreconciled godoc
// @Summary List unreconciled bank transactions
// @Tags reconciliation
// @Produce  json
// @Param   accountID path string true "Bank account ID"
// @Success 200 {array} dto.BankTransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{accountID}/unreconciled [get]
func (h *reconciliationHandler) listUnreconciled(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	txns, err := h.reconciliationService.ListUnreconciledTransactions(c.Request.Context(), rc, c.Param("accountID"))
	if err != nil {
		handleServiceError(c, err, "Failed to list unreconciled transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankTransactionResponses(txns))
}

// previewReconciliation godoc
// @Summary Preview a reconciliation
// @Description Computes opening balance plus the selected transactions and the difference to the statement
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   reconciliation body dto.ReconciliationRequest true "Statement and selected transactions"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Bank account or transaction not found"
// @Security BearerAuth
// @Router /reconciliations/preview [post]
func (h *reconciliationHandler) previewReconciliation(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.ReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for PreviewReconciliation")
		return
	}

	resp, err := h.reconciliationService.PreviewReconciliation(c.Request.Context(), rc, req)
	if err != nil {
		handleServiceError(c, err, "Failed to preview reconciliation")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// completeReconciliation godoc
// @Summary Complete a reconciliation
// @Description Marks the selected transactions reconciled when the difference is within tolerance
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   reconciliation body dto.ReconciliationRequest true "Statement and selected transactions"
// @Success 201 {object} dto.ReconciliationResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error or difference outside tolerance"
// @Failure 403 {object} dto.ErrorResponse "Role may not complete reconciliations"
// @Failure 404 {object} dto.ErrorResponse "Bank account or transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction already reconciled"
// @Security BearerAuth
// @Router /reconciliations [post]
func (h *reconciliationHandler) completeReconciliation(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.ReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for CompleteReconciliation")
		return
	}

	rec, err := h.reconciliationService.CompleteReconciliation(c.Request.Context(), rc, req)
	if err != nil {
		handleServiceError(c, err, "Failed to complete reconciliation")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Reconciliation completed",
		slog.String("reconciliation_id", rec.ReconciliationID),
		slog.Int("transaction_count", len(rec.TransactionIDs)))
	c.JSON(http.StatusCreated, dto.ToReconciliationResponse(rec, true))
}
