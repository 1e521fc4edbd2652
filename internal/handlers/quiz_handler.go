package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/SAP-F-2025/essay-quiz-service/internal/views"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// QuizHandler serves the quiz as server-rendered HTML and as a JSON API over the same
// session service.
type QuizHandler struct {
	BaseHandler
	sessions     *services.QuizSessionService
	importExport services.ImportExportService
}

func NewQuizHandler(sessions *services.QuizSessionService, importExport services.ImportExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:  NewBaseHandler(logger),
		sessions:     sessions,
		importExport: importExport,
	}
}

type quizAction func(c *gin.Context, sessionID string) (*models.QuizState, error)

// ===== HTML =====

// Page renders the current view of the session.
func (h *QuizHandler) Page(c *gin.Context) {
	state, err := h.sessions.State(c.Request.Context(), SessionID(c))
	if err != nil {
		h.LogError(c, err, "Failed to load quiz session")
		c.String(http.StatusInternalServerError, "Failed to load quiz session")
		return
	}
	c.HTML(http.StatusOK, views.PageTemplate, views.Render(state, h.sessions.BankSize()))
}

// formAction runs a transition for a form post and redirects back to the page. Rejected
// and failed transitions are visible in the re-rendered state, so they only get logged.
func (h *QuizHandler) formAction(action quizAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := action(c, SessionID(c)); err != nil {
			if quizErrorStatus(err) >= http.StatusInternalServerError && !errors.Is(err, services.ErrGradingFailed) {
				h.LogError(c, err, "Quiz action failed")
			} else {
				h.LogDebug(c, "Quiz action rejected", "error", err)
			}
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (h *QuizHandler) StartForm() gin.HandlerFunc { return h.formAction(h.start) }
func (h *QuizHandler) AnswerForm() gin.HandlerFunc { return h.formAction(h.answer) }
func (h *QuizHandler) ResetForm() gin.HandlerFunc { return h.formAction(h.reset) }
func (h *QuizHandler) SkipForm() gin.HandlerFunc { return h.formAction(h.skip) }
func (h *QuizHandler) NextForm() gin.HandlerFunc { return h.formAction(h.next) }
func (h *QuizHandler) RestartForm() gin.HandlerFunc { return h.formAction(h.restart) }

// ExportResults downloads the review list of a finished quiz as an Excel workbook
// @Summary Export quiz results
// @Tags quiz
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 409 {object} ErrorResponse
// @Router /quiz/results.xlsx [get]
func (h *QuizHandler) ExportResults(c *gin.Context) {
	state, err := h.sessions.State(c.Request.Context(), SessionID(c))
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to load quiz session", err)
		return
	}
	if state.Phase != models.PhaseResults {
		h.RespondWithError(c, http.StatusConflict, "Quiz is not finished", services.ErrInvalidPhase)
		return
	}

	data, err := h.importExport.ExportResultsToExcel(c.Request.Context(), state)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to export results", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-results-%d.xlsx"`, state.Summary().Percentage))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ===== JSON API =====

// GetState returns the session state and its rendered view
// @Summary Get quiz state
// @Tags quiz
// @Produce json
// @Success 200 {object} QuizResponse
// @Router /api/quiz/state [get]
func (h *QuizHandler) GetState(c *gin.Context) {
	state, err := h.sessions.State(c.Request.Context(), SessionID(c))
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to load quiz session", err)
		return
	}
	c.JSON(http.StatusOK, h.response(state))
}

// apiAction runs a transition for the JSON API. A grading failure is not an HTTP error:
// the returned state carries the failure banner.
func (h *QuizHandler) apiAction(action quizAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := action(c, SessionID(c))
		if err != nil && !errors.Is(err, services.ErrGradingFailed) {
			var details interface{}
			if state != nil {
				details = h.response(state)
			}
			h.RespondWithError(c, quizErrorStatus(err), err.Error(), err, details)
			return
		}
		c.JSON(http.StatusOK, h.response(state))
	}
}

func (h *QuizHandler) StartAPI() gin.HandlerFunc   { return h.apiAction(h.start) }
func (h *QuizHandler) AnswerAPI() gin.HandlerFunc  { return h.apiAction(h.answer) }
func (h *QuizHandler) ResetAPI() gin.HandlerFunc   { return h.apiAction(h.reset) }
func (h *QuizHandler) SkipAPI() gin.HandlerFunc    { return h.apiAction(h.skip) }
func (h *QuizHandler) NextAPI() gin.HandlerFunc    { return h.apiAction(h.next) }
func (h *QuizHandler) RestartAPI() gin.HandlerFunc { return h.apiAction(h.restart) }

func (h *QuizHandler) response(state *models.QuizState) QuizResponse {
	return QuizResponse{State: state, View: views.Render(state, h.sessions.BankSize())}
}

// ===== TRANSITIONS =====

// start reads the count from a form field or a JSON body; without one the count chosen
// on the setup view is used.
func (h *QuizHandler) start(c *gin.Context, sessionID string) (*models.QuizState, error) {
	var req StartQuizRequest
	if err := bindOptional(c, &req); err != nil {
		return nil, services.NewValidationError("count", "must be an integer", c.PostForm("count"))
	}
	ctx := c.Request.Context()
	if req.Count == 0 {
		state, err := h.sessions.State(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		req.Count = state.QuestionCount
	}
	h.LogRequest(c, "Starting quiz", "count", req.Count)
	return h.sessions.Start(ctx, sessionID, req.Count)
}

func (h *QuizHandler) answer(c *gin.Context, sessionID string) (*models.QuizState, error) {
	var req SubmitAnswerRequest
	if err := bindOptional(c, &req); err != nil {
		return nil, services.NewValidationError("answer", "invalid request payload", nil)
	}
	return h.sessions.Submit(c.Request.Context(), sessionID, req.Answer)
}

func (h *QuizHandler) reset(c *gin.Context, sessionID string) (*models.QuizState, error) {
	return h.sessions.ResetCurrentQuestion(c.Request.Context(), sessionID)
}

func (h *QuizHandler) skip(c *gin.Context, sessionID string) (*models.QuizState, error) {
	return h.sessions.Skip(c.Request.Context(), sessionID)
}

func (h *QuizHandler) next(c *gin.Context, sessionID string) (*models.QuizState, error) {
	return h.sessions.Next(c.Request.Context(), sessionID)
}

func (h *QuizHandler) restart(c *gin.Context, sessionID string) (*models.QuizState, error) {
	return h.sessions.Restart(c.Request.Context(), sessionID)
}
