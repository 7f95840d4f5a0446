package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/ledger", h.getLedger)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Derives a trial balance from posted entries dated on or before asOf
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err, "Invalid asOf date. Use YYYY-MM-DD")
		return
	}

	var asOf time.Time
	if params.AsOf != nil {
		asOf = *params.AsOf
	}

	tb, err := h.reportingService.GetTrialBalance(c.Request.Context(), rc, asOf)
	if err != nil {
		handleServiceError(c, err, "Failed to generate trial balance report")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Trial balance report generated",
		slog.Int("row_count", len(tb.Rows)), slog.Bool("is_balanced", tb.IsBalanced))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

// getLedger godoc
// @Summary Account ledger
// @Description Chronological posted lines with a running balance per account
// @Tags reports
// @Produce json
// @Param accountID query string false "Restrict to one account"
// @Param startDate query string false "Earliest entry date (YYYY-MM-DD)"
// @Param endDate query string false "Latest entry date (YYYY-MM-DD)"
// @Success 200 {object} dto.LedgerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/ledger [get]
func (h *reportingHandler) getLedger(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var params dto.LedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err, "Invalid ledger query. Dates use YYYY-MM-DD")
		return
	}

	filter := domain.LedgerFilter{
		AccountID: params.AccountID,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	}
	rows, err := h.reportingService.GetLedger(c.Request.Context(), rc, filter)
	if err != nil {
		handleServiceError(c, err, "Failed to generate ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerResponse(rows))
}
