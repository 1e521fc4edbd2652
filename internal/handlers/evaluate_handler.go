package handlers

import (
	"errors"
	"io"
	"net/http"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// EvaluateHandler serves the grading proxy. Its error bodies use the {"error": "..."}
// shape clients of the proxy expect, unlike the rest of the API.
type EvaluateHandler struct {
	BaseHandler
	gradingService *services.GradingService
}

func NewEvaluateHandler(gradingService *services.GradingService, logger utils.Logger) *EvaluateHandler {
	return &EvaluateHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
	}
}

// Evaluate grades one answer
// @Summary Grade an essay answer
// @Description Forwards the answer to the grading model and returns its verdict unchanged
// @Tags grading
// @Accept json
// @Produce json
// @Param request body models.EvaluateRequest true "Question, model answer and student answer"
// @Success 200 {object} models.Evaluation
// @Failure 400 {object} models.EvaluateErrorResponse
// @Failure 405 {object} models.EvaluateErrorResponse
// @Failure 500 {object} models.EvaluateErrorResponse
// @Failure 502 {object} models.EvaluateErrorResponse
// @Failure 504 {object} models.EvaluateErrorResponse
// @Router /api/evaluate [post]
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, models.EvaluateErrorResponse{Error: "Method not allowed"})
		return
	}

	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.LogWarn(c, "Invalid evaluate payload", "error", err)
		c.JSON(http.StatusBadRequest, models.EvaluateErrorResponse{Error: "Invalid JSON body"})
		return
	}

	result, err := h.gradingService.Evaluate(c.Request.Context(), &req)
	if err != nil {
		status, message := evaluateError(err)
		if status >= http.StatusInternalServerError {
			h.LogError(c, err, "Evaluation failed", "status_code", status)
		}
		c.JSON(status, models.EvaluateErrorResponse{Error: message})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

// evaluateError maps grading failures to the proxy's status codes. The upstream URL and
// credential never reach the message.
func evaluateError(err error) (int, string) {
	var (
		validationErrs apperrors.ValidationErrors
		configErr      *apperrors.ConfigurationError
		upstreamErr    *apperrors.UpstreamError
		formatErr      *apperrors.UpstreamFormatError
	)
	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, validationErrs.MissingFieldsMessage()
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, configErr.Error()
	case errors.As(err, &upstreamErr):
		if upstreamErr.Timeout() {
			return upstreamErr.HTTPStatus(), "Grading request timed out"
		}
		return upstreamErr.HTTPStatus(), upstreamErr.Error()
	case errors.As(err, &formatErr):
		return http.StatusInternalServerError, formatErr.Error()
	default:
		return http.StatusInternalServerError, "Failed to evaluate answer"
	}
}
