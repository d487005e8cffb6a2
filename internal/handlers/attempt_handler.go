package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ai-olympiad/qcm-service/internal/services"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger *slog.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt begins (or resumes) the candidate's attempt for a session.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	sessionID := h.parseUUIDParam(c, "id")
	if sessionID == "" {
		return
	}

	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Starting attempt", "session_id", sessionID, "candidate_id", candidateID)

	attempt, err := h.attemptService.Start(c.Request.Context(), sessionID, candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// GetAttemptQuestions returns the frozen question set of a running attempt
// with the candidate's current selections, keys withheld.
func (h *AttemptHandler) GetAttemptQuestions(c *gin.Context) {
	attemptID := h.parseUUIDParam(c, "id")
	if attemptID == "" {
		return
	}

	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	attempt, err := h.attemptService.GetQuestions(c.Request.Context(), attemptID, candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// SubmitAnswer records or replaces the selection for one question.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID := h.parseUUIDParam(c, "id")
	if attemptID == "" {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.attemptService.SubmitAnswer(c.Request.Context(), attemptID, candidateID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteAttempt grades and closes the attempt.
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	attemptID := h.parseUUIDParam(c, "id")
	if attemptID == "" {
		return
	}

	var req services.CompleteAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Completing attempt", "attempt_id", attemptID, "candidate_id", candidateID)

	result, err := h.attemptService.Complete(c.Request.Context(), attemptID, candidateID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttemptDetails returns the post-completion review with keys revealed.
func (h *AttemptHandler) GetAttemptDetails(c *gin.Context) {
	attemptID := h.parseUUIDParam(c, "id")
	if attemptID == "" {
		return
	}

	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	details, err := h.attemptService.GetDetails(c.Request.Context(), attemptID, candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}
