package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ai-olympiad/qcm-service/internal/services"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

// ErrorResponse is the error envelope returned by every handler.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Fields  any    `json:"fields,omitempty"`
}

// ListResponse wraps paginated list results.
type ListResponse struct {
	Data  any   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	h.logger.Info(message, args...)
}

// parseUUIDParam validates a path parameter as a UUID. Writes a 400 and
// returns "" when invalid.
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) string {
	value := c.Param(name)
	if _, err := uuid.Parse(value); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: "must be a valid UUID",
		})
		return ""
	}
	return value
}

func (h *BaseHandler) parsePagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// handleServiceError maps service errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Fields:  validationErrs,
		})
		return
	}

	var insufficientErr *services.InsufficientQuestionsError
	if errors.As(err, &insufficientErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Question bank cannot satisfy the draw",
			Details: insufficientErr.Error(),
		})
		return
	}

	var permissionErr *services.PermissionError
	if errors.As(err, &permissionErr) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
			Details: permissionErr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrAttemptNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrSessionNotOpen),
		errors.Is(err, services.ErrSessionClosed),
		errors.Is(err, services.ErrSessionInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrSessionAlreadyCompleted),
		errors.Is(err, services.ErrAttemptAlreadyCompleted),
		errors.Is(err, services.ErrAttemptNotInProgress),
		errors.Is(err, services.ErrSessionHasAttempts),
		errors.Is(err, services.ErrQuestionReferenced),
		errors.Is(err, services.ErrCategoryHasQuestions),
		errors.Is(err, services.ErrCategorySlugTaken),
		errors.Is(err, services.ErrAttemptReviewUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrQuestionNotInAttempt):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})

	default:
		h.logger.Error("Unhandled service error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
