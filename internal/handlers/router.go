package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ai-olympiad/qcm-service/internal/config"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/services"
)

type HandlerManager struct {
	questionHandler  *QuestionHandler
	categoryHandler  *CategoryHandler
	sessionHandler   *SessionHandler
	attemptHandler   *AttemptHandler
	candidateHandler *CandidateHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *JWTAuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger *slog.Logger,
	jwtConfig config.JWTConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		questionHandler:  NewQuestionHandler(serviceManager.Question(), logger),
		categoryHandler:  NewCategoryHandler(serviceManager.Category(), logger),
		sessionHandler:   NewSessionHandler(serviceManager.Session(), logger),
		attemptHandler:   NewAttemptHandler(serviceManager.Attempt(), logger),
		candidateHandler: NewCandidateHandler(serviceManager.Candidate(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		authMiddleware:   NewJWTAuthMiddleware(jwtConfig, userRepo, logger),
		serviceManager:   serviceManager,
	}
}

// SetupRoutes registers all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "qcm-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Candidate surface
		qcm := v1.Group("/qcm")
		qcm.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleCandidate))
		{
			qcm.GET("/sessions", hm.candidateHandler.ListSessions)
			qcm.POST("/sessions/:id/start", hm.attemptHandler.StartAttempt)

			qcm.GET("/attempts/:id/questions", hm.attemptHandler.GetAttemptQuestions)
			qcm.POST("/attempts/:id/answers", hm.attemptHandler.SubmitAnswer)
			qcm.POST("/attempts/:id/complete", hm.attemptHandler.CompleteAttempt)
			qcm.GET("/attempts/:id/details", hm.attemptHandler.GetAttemptDetails)

			qcm.GET("/results", hm.candidateHandler.ListResults)
			qcm.GET("/stats", hm.candidateHandler.GetStats)
		}

		// Admin surface
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			questions := admin.Group("/questions")
			{
				questions.POST("", hm.questionHandler.CreateQuestion)
				questions.POST("/bulk", hm.questionHandler.CreateQuestionsBulk)
				questions.GET("", hm.questionHandler.ListQuestions)
				questions.GET("/:id", hm.questionHandler.GetQuestion)
				questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
				questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			}

			categories := admin.Group("/categories")
			{
				categories.POST("", hm.categoryHandler.CreateCategory)
				categories.GET("", hm.categoryHandler.ListCategories)
				categories.PUT("/:id", hm.categoryHandler.UpdateCategory)
				categories.DELETE("/:id", hm.categoryHandler.DeleteCategory)
			}

			sessions := admin.Group("/sessions")
			{
				sessions.POST("", hm.sessionHandler.CreateSession)
				sessions.GET("", hm.sessionHandler.ListSessions)
				sessions.GET("/:id", hm.sessionHandler.GetSession)
				sessions.PUT("/:id", hm.sessionHandler.UpdateSession)
				sessions.DELETE("/:id", hm.sessionHandler.DeleteSession)
			}

			admin.GET("/stats", hm.dashboardHandler.GetAdminStats)
			admin.GET("/export", hm.dashboardHandler.ExportResults)
		}
	}
}
