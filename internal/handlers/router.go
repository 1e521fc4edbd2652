package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/essay-quiz-service/internal/grading"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/SAP-F-2025/essay-quiz-service/internal/views"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	serviceManager  services.ServiceManager
	evaluateHandler *EvaluateHandler
	quizHandler     *QuizHandler
	resultsHandler  *ResultsHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		serviceManager:  serviceManager,
		evaluateHandler: NewEvaluateHandler(serviceManager.Grading(), logger),
		quizHandler:     NewQuizHandler(serviceManager.Sessions(), serviceManager.ImportExport(), logger),
		resultsHandler:  NewResultsHandler(serviceManager.Sessions(), logger),
	}
}

// RouterOptions configures the session cookie.
type RouterOptions struct {
	SessionMaxAge int // seconds; 0 makes it a browser-session cookie
	SecureCookies bool
}

// SetupRoutes sets up all routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, opts RouterOptions) {
	router.SetHTMLTemplate(views.HTMLTemplate())

	router.GET("/health", hm.HealthCheck)

	// Grading proxy; every method reaches the handler so it can answer 405 itself
	router.Any(grading.EvaluatePath, hm.evaluateHandler.Evaluate)

	sessions := router.Group("", SessionMiddleware(hm.serviceManager.Sessions().NewSessionID, opts.SessionMaxAge, opts.SecureCookies))

	// Server-rendered quiz
	sessions.GET("/", hm.quizHandler.Page)
	quiz := sessions.Group("/quiz")
	{
		quiz.POST("/start", hm.quizHandler.StartForm())
		quiz.POST("/answer", hm.quizHandler.AnswerForm())
		quiz.POST("/reset", hm.quizHandler.ResetForm())
		quiz.POST("/skip", hm.quizHandler.SkipForm())
		quiz.POST("/next", hm.quizHandler.NextForm())
		quiz.POST("/restart", hm.quizHandler.RestartForm())
		quiz.GET("/results.xlsx", hm.quizHandler.ExportResults)
	}

	api := sessions.Group("/api")
	{
		quizAPI := api.Group("/quiz")
		{
			quizAPI.GET("/state", hm.quizHandler.GetState)
			quizAPI.POST("/start", hm.quizHandler.StartAPI())
			quizAPI.POST("/answer", hm.quizHandler.AnswerAPI())
			quizAPI.POST("/reset", hm.quizHandler.ResetAPI())
			quizAPI.POST("/skip", hm.quizHandler.SkipAPI())
			quizAPI.POST("/next", hm.quizHandler.NextAPI())
			quizAPI.POST("/restart", hm.quizHandler.RestartAPI())
		}

		results := api.Group("/results")
		{
			results.GET("", hm.resultsHandler.ListResults)
			results.GET("/stats", hm.resultsHandler.GetStats)
		}
	}
}

// HealthCheck reports liveness and whether grading can work
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            "essay-quiz-service",
		"grading_configured": hm.serviceManager.GradingConfigured(),
		"question_bank_size": hm.serviceManager.Sessions().BankSize(),
	})
}
