package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/services"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion adds one question to the bank.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req validator.QuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// CreateQuestionsBulk imports a batch of questions, reporting per-row errors.
func (h *QuestionHandler) CreateQuestionsBulk(c *gin.Context) {
	var req validator.BulkQuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Bulk question import", "rows", len(req.Questions))

	result, err := h.questionService.BulkCreate(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseUUIDParam(c, "id")
	if id == "" {
		return
	}

	var req validator.QuestionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question, or deactivates it when an attempt
// already references it.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseUUIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseUUIDParam(c, "id")
	if id == "" {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, size := h.parsePagination(c)

	filters := repositories.QuestionFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if v := c.Query("category_id"); v != "" {
		filters.CategoryID = &v
	}
	if v := c.Query("difficulty"); v != "" {
		difficulty := models.Difficulty(v)
		if !difficulty.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid difficulty filter",
				Details: "must be one of easy, medium, hard",
			})
			return
		}
		filters.Difficulty = &difficulty
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}
	if v := c.Query("search"); v != "" {
		filters.Search = &v
	}

	questions, total, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: questions, Total: total, Page: page, Size: size})
}
