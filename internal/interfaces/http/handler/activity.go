package handler

import (
	"context"

	appactivity "github.com/friendaudit/backend/internal/application/activity"
	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/friendaudit/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityRecorder is the activity log as seen by HTTP
type ActivityRecorder interface {
	RecordAudit(ctx context.Context, input appactivity.RecordAuditInput) (*activity.ActivityRecord, error)
	RecordJournalNote(ctx context.Context, input appactivity.RecordJournalInput) (*activity.JournalEntry, error)
	History(ctx context.Context, userID string, opts activity.ListOptions) (*appactivity.History, error)
	Audits(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.ActivityRecord, error)
	Journal(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.JournalEntry, error)
	DeleteAudit(ctx context.Context, userID string, id uuid.UUID) error
	DeleteJournalEntry(ctx context.Context, userID string, id uuid.UUID) error
}

// HistoryResponse is the combined audit and journal history
type HistoryResponse struct {
	Audits  []dto.AuditResponse        `json:"audits"`
	Journal []dto.JournalEntryResponse `json:"journal"`
}

// ActivityHandler records completed audits and journal notes
type ActivityHandler struct {
	BaseHandler
	recorder     ActivityRecorder
	entitlements EntitlementService
	logger       *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(recorder ActivityRecorder, entitlements EntitlementService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		recorder:     recorder,
		entitlements: entitlements,
		logger:       logger,
	}
}

// RecordAudit stores a completed audit. The gating feature depends on the
// audit type, so the check runs here rather than in route middleware.
// The stored state is invalidated afterwards so the next check recounts usage.
func (h *ActivityHandler) RecordAudit(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req dto.RecordAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	auditType, err := activity.ParseAuditType(req.AuditType)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeValidation), dto.ErrCodeValidation, err.Error())
		return
	}

	if !middleware.EnforceFeature(c, auditType.Feature(), h.entitlements, h.logger) {
		return
	}

	ctx := c.Request.Context()
	record, err := h.recorder.RecordAudit(ctx, appactivity.RecordAuditInput{
		UserID:     userID,
		FriendName: req.FriendName,
		AuditType:  auditType,
		Results:    req.Results,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.invalidate(ctx, userID)
	h.Created(c, dto.NewAuditResponse(record))
}

// ListAudits lists the caller's audit results, newest first
func (h *ActivityHandler) ListAudits(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	opts, ok := h.bindListQuery(c)
	if !ok {
		return
	}
	audits, err := h.recorder.Audits(c.Request.Context(), userID, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewAuditResponses(audits), opts.Limit, opts.Offset, len(audits))
}

// DeleteAudit removes one of the caller's audit results
func (h *ActivityHandler) DeleteAudit(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.recorder.DeleteAudit(ctx, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidate(ctx, userID)
	h.NoContent(c)
}

// RecordJournalNote stores a journal note; the route is gated on journal
func (h *ActivityHandler) RecordJournalNote(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req dto.RecordJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	entryType, err := activity.ParseEntryType(req.EntryType)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeValidation), dto.ErrCodeValidation, err.Error())
		return
	}

	entry, err := h.recorder.RecordJournalNote(c.Request.Context(), appactivity.RecordJournalInput{
		UserID:     userID,
		FriendName: req.FriendName,
		EntryType:  entryType,
		Content:    req.Content,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewJournalEntryResponse(entry))
}

// ListJournal lists the caller's journal entries, newest first
func (h *ActivityHandler) ListJournal(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	opts, ok := h.bindListQuery(c)
	if !ok {
		return
	}
	entries, err := h.recorder.Journal(c.Request.Context(), userID, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewJournalEntryResponses(entries), opts.Limit, opts.Offset, len(entries))
}

// DeleteJournalEntry removes one of the caller's journal entries
func (h *ActivityHandler) DeleteJournalEntry(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.recorder.DeleteJournalEntry(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetHistory returns one page of both audits and journal entries
func (h *ActivityHandler) GetHistory(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	opts, ok := h.bindListQuery(c)
	if !ok {
		return
	}
	history, err := h.recorder.History(c.Request.Context(), userID, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, HistoryResponse{
		Audits:  dto.NewAuditResponses(history.Audits),
		Journal: dto.NewJournalEntryResponses(history.Journal),
	})
}

func (h *ActivityHandler) bindListQuery(c *gin.Context) (activity.ListOptions, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return activity.ListOptions{}, false
	}
	return q.ToListOptions(), true
}

func (h *ActivityHandler) invalidate(ctx context.Context, userID string) {
	if err := h.entitlements.Invalidate(ctx, userID); err != nil {
		h.logger.Warn("Failed to invalidate entitlement state",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
