package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ai-olympiad/qcm-service/internal/services"
)

type CandidateHandler struct {
	BaseHandler
	candidateService services.CandidateService
}

func NewCandidateHandler(candidateService services.CandidateService, logger *slog.Logger) *CandidateHandler {
	return &CandidateHandler{
		BaseHandler:      NewBaseHandler(logger),
		candidateService: candidateService,
	}
}

// ListSessions returns visible sessions with the candidate's status on each.
func (h *CandidateHandler) ListSessions(c *gin.Context) {
	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	sessions, err := h.candidateService.ListSessions(c.Request.Context(), candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

// ListResults returns the candidate's completed attempts.
func (h *CandidateHandler) ListResults(c *gin.Context) {
	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	results, err := h.candidateService.ListResults(c.Request.Context(), candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

// GetStats returns the candidate's aggregate statistics.
func (h *CandidateHandler) GetStats(c *gin.Context) {
	candidateID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.candidateService.GetStats(c.Request.Context(), candidateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
