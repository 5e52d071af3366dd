package handler

import (
	"errors"
	"net/http"

	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/infrastructure/logger"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/friendaudit/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler holds the response helpers shared by every handler.
type BaseHandler struct{}

// getUserID returns the authenticated user, or writes 401 and returns false
func (h *BaseHandler) getUserID(c *gin.Context) (string, bool) {
	if userID := middleware.GetJWTUserID(c); userID != "" {
		return userID, true
	}
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
	return "", false
}

// parseID binds the :id path parameter, or writes 400 and returns false
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta adds the pagination window to a list response.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, limit, offset, count int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, limit, offset, count))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes the error envelope, tagged with the request id.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// HandleError maps domain errors onto their HTTP status. Any other error is
// logged and answered with a generic 500 so internals never leak.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
