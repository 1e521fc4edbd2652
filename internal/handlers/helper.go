package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName holds the browser's quiz session id.
	SessionCookieName = "quiz_session"
	sessionContextKey = utils.SessionIDKey
)

// SessionMiddleware assigns every browser a quiz session, reusing the cookie when it
// carries a well-formed id.
func SessionMiddleware(newID func() string, maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = newID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, id, maxAge, "/", "", secure, true)
		}
		c.Set(sessionContextKey, id)
		c.Next()
	}
}

// SessionID returns the session assigned by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}

// bindOptional binds a form or JSON body when one was sent.
func bindOptional(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// quizErrorStatus maps a quiz service error to an HTTP status.
func quizErrorStatus(err error) int {
	switch {
	case services.IsBadInput(err), services.IsValidation(err):
		return http.StatusBadRequest
	case services.IsInvalidPhase(err), services.IsConflict(err):
		return http.StatusConflict
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrResultsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorCode names the error class in API responses.
func errorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrSubmissionInFlight):
		return "SUBMISSION_IN_FLIGHT"
	case errors.Is(err, services.ErrAlreadyAnswered):
		return "ALREADY_ANSWERED"
	case errors.Is(err, services.ErrEmptyAnswer):
		return "EMPTY_ANSWER"
	case errors.Is(err, services.ErrInvalidQuestionCount):
		return "INVALID_QUESTION_COUNT"
	case errors.Is(err, services.ErrInvalidPhase):
		return "INVALID_PHASE"
	case errors.Is(err, services.ErrStaleSubmission):
		return "STALE_SUBMISSION"
	case errors.Is(err, services.ErrResultsUnavailable):
		return "RESULTS_UNAVAILABLE"
	case apperrors.IsValidation(err):
		return "VALIDATION_ERROR"
	case apperrors.IsConfiguration(err):
		return "CONFIGURATION_ERROR"
	case apperrors.IsUpstream(err), apperrors.IsUpstreamFormat(err):
		return "UPSTREAM_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
