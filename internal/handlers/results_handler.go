package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	BaseHandler
	sessions *services.QuizSessionService
}

func NewResultsHandler(sessions *services.QuizSessionService, logger utils.Logger) *ResultsHandler {
	return &ResultsHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
	}
}

// ListResults lists finished quizzes, newest first
// @Summary List quiz results
// @Tags results
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Param session query bool false "Only results of the caller's session"
// @Success 200 {object} SuccessResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/results [get]
func (h *ResultsHandler) ListResults(c *gin.Context) {
	filters := repositories.ResultFilters{
		Limit:     ParseIntQuery(c, "limit", 20),
		Offset:    ParseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "completed_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if c.Query("session") == "true" {
		filters.SessionID = SessionID(c)
	}

	results, total, err := h.sessions.RecentResults(c.Request.Context(), filters)
	if err != nil {
		h.RespondWithError(c, quizErrorStatus(err), "Failed to list results", err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Results retrieved successfully", gin.H{
		"results": results,
		"total":   total,
	})
}

// GetStats aggregates all finished quizzes
// @Summary Result statistics
// @Tags results
// @Produce json
// @Success 200 {object} SuccessResponse{data=repositories.ResultStats}
// @Failure 503 {object} ErrorResponse
// @Router /api/results/stats [get]
func (h *ResultsHandler) GetStats(c *gin.Context) {
	stats, err := h.sessions.ResultStats(c.Request.Context())
	if err != nil {
		h.RespondWithError(c, quizErrorStatus(err), "Failed to compute statistics", err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Statistics retrieved successfully", stats)
}
