package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/books_backend/internal/core/domain"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for journal entries and their lifecycle.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// RegisterJournalRoutes registers the journal entry routes.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createJournalEntry)
		entries.GET("", h.listJournalEntries)
		entries.POST("/balance-check", h.checkBalance)
		entries.GET("/:entryID", h.getJournalEntry)
		entries.PUT("/:entryID", h.updateJournalEntry)
		entries.DELETE("/:entryID", h.deleteJournalEntry)
		entries.POST("/:entryID/ask-for-review", h.askForReview)
		entries.POST("/:entryID/post", h.postJournalEntry)
		entries.POST("/:entryID/void", h.voidJournalEntry)
	}
}

// createJournalEntry godoc
// @Summary Create a journal entry
// @Description Creates a balanced journal entry as a draft, or posted directly when autoPost is set
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error or unbalanced entry"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Role may not auto-post"
// @Failure 500 {object} dto.ErrorResponse "Failed to create journal entry"
// @Security BearerAuth
// @Router /journal-entries [post]
func (h *journalHandler) createJournalEntry(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for CreateJournalEntry")
		return
	}

	entry, err := h.journalService.CreateJournalEntry(c.Request.Context(), rc, req)
	if err != nil {
		handleServiceError(c, err, "Failed to create journal entry")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry created",
		slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists journal entries newest first with cursor pagination
// @Tags journal-entries
// @Produce  json
// @Param   status query string false "Filter by status" Enums(draft, ask_for_review, posted, voided)
// @Param   startDate query string false "Earliest entry date (YYYY-MM-DD)"
// @Param   endDate query string false "Latest entry date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list journal entries"
// @Security BearerAuth
// @Router /journal-entries [get]
func (h *journalHandler) listJournalEntries(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err, "Failed to bind query params for ListJournalEntries")
		return
	}

	resp, err := h.journalService.ListJournalEntries(c.Request.Context(), rc, params)
	if err != nil {
		handleServiceError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// checkBalance godoc
// @Summary Check whether lines balance
// @Description Live balanced/unbalanced indicator using the same rule as create, edit and post
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   lines body dto.BalanceCheckRequest true "Lines to check"
// @Success 200 {object} dto.BalanceCheckResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed amount"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /journal-entries/balance-check [post]
func (h *journalHandler) checkBalance(c *gin.Context) {
	if _, ok := requestContext(c); !ok {
		return
	}
	var req dto.BalanceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for CheckBalance")
		return
	}

	resp, err := h.journalService.CheckBalance(c.Request.Context(), req.Lines)
	if err != nil {
		handleServiceError(c, err, "Failed to check balance")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [get]
func (h *journalHandler) getJournalEntry(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	entry, err := h.journalService.GetJournalEntry(c.Request.Context(), rc, c.Param("entryID"))
	if err != nil {
		handleServiceError(c, err, "Failed to get journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// updateJournalEntry godoc
// @Summary Update a journal entry
// @Description Replaces the date, description and lines of a draft or in-review entry
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   entry body dto.UpdateJournalEntryRequest true "New values"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error or unbalanced entry"
// @Failure 403 {object} dto.ErrorResponse "Role may not edit this entry"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is posted or voided, or was modified concurrently"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [put]
func (h *journalHandler) updateJournalEntry(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for UpdateJournalEntry")
		return
	}

	entry, err := h.journalService.UpdateJournalEntry(c.Request.Context(), rc, c.Param("entryID"), req)
	if err != nil {
		handleServiceError(c, err, "Failed to update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteJournalEntry godoc
// @Summary Delete a draft journal entry
// @Tags journal-entries
// @Param   entryID path string true "Journal entry ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Role may not delete entries"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is no longer a draft"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [delete]
func (h *journalHandler) deleteJournalEntry(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	if err := h.journalService.DeleteJournalEntry(c.Request.Context(), rc, c.Param("entryID")); err != nil {
		handleServiceError(c, err, "Failed to delete journal entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// askForReview godoc
// @Summary Submit a draft for review
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 403 {object} dto.ErrorResponse "Role may not submit for review"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/ask-for-review [post]
func (h *journalHandler) askForReview(c *gin.Context) {
	h.transition(c, domain.EventAskForReview, h.journalService.AskForReviewJournalEntry)
}

// postJournalEntry godoc
// @Summary Post a journal entry
// @Description Re-validates the stored lines and applies them to account balances
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Stored lines are unbalanced"
// @Failure 403 {object} dto.ErrorResponse "Role may not post"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is already posted or voided"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/post [post]
func (h *journalHandler) postJournalEntry(c *gin.Context) {
	h.transition(c, domain.EventPost, h.journalService.PostJournalEntry)
}

// voidJournalEntry godoc
// @Summary Void a posted journal entry
// @Description Marks the entry voided and reverses its effect on account balances
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   reason body dto.VoidJournalEntryRequest true "Void reason"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Reason missing"
// @Failure 403 {object} dto.ErrorResponse "Role may not void"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not posted"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/void [post]
func (h *journalHandler) voidJournalEntry(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.VoidJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Failed to bind JSON for VoidJournalEntry")
		return
	}

	entry, err := h.journalService.VoidJournalEntry(c.Request.Context(), rc, c.Param("entryID"), req.Reason)
	if err != nil {
		handleServiceError(c, err, "Failed to void journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

type entryAction func(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error)

// transition runs a body-less lifecycle action against the entry named in the path.
func (h *journalHandler) transition(c *gin.Context, event domain.EntryEvent, action entryAction) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	entry, err := action(c.Request.Context(), rc, c.Param("entryID"))
	if err != nil {
		handleServiceError(c, err, "Failed to "+string(event)+" journal entry")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry transitioned",
		slog.String("entry_id", entry.EntryID), slog.String("event", string(event)), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}
