package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/views"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const correctVerdict = `{"status":"correct","feedback":"إجابة ممتازة","score":10}`

func postForm(app *testApp, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPageAssignsSessionAndRendersSetup(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)

	w := app.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), views.StartText)
	assert.Contains(t, w.Body.String(), `dir="rtl"`)

	cookie := sessionCookie(t, w)
	assert.NoError(t, uuid.Validate(cookie.Value))
	assert.True(t, cookie.HttpOnly)
}

func TestSessionCookieIsReused(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	cookie := &http.Cookie{Name: SessionCookieName, Value: uuid.NewString()}

	w := app.do(http.MethodGet, "/api/quiz/state", nil, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, SessionCookieName, c.Name, "a valid session must not be reissued")
	}
}

func TestSessionCookieMustBeUUID(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)

	w := app.do(http.MethodGet, "/", nil, &http.Cookie{Name: SessionCookieName, Value: "../../etc"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "../../etc", sessionCookie(t, w).Value)
}

func TestFormFlowRedirectsAndProgresses(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	cookie := sessionCookie(t, app.do(http.MethodGet, "/", nil))

	w := postForm(app, "/quiz/start", url.Values{"count": {"2"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do(http.MethodGet, "/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "سؤال 1 من 2")

	w = postForm(app, "/quiz/answer", url.Values{"answer": {"my answer"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	state, err := app.sessions.State(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseQuiz, state.Phase)
	assert.Len(t, state.SelectedQuestions, 2)
	require.Len(t, state.Answers, 1)

	postForm(app, "/quiz/next", nil, cookie)
	postForm(app, "/quiz/skip", nil, cookie)

	w = app.do(http.MethodGet, "/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), views.ResultsTitleText)
	assert.Contains(t, w.Body.String(), views.RestartText)
}

func TestFormRejectionStillRedirects(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	cookie := sessionCookie(t, app.do(http.MethodGet, "/", nil))

	w := postForm(app, "/quiz/answer", url.Values{"answer": {"too early"}}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Zero(t, app.gemini.calls.Load())

	_, err := app.store.Get(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, repositories.ErrNotFound, "an untouched session is not stored")
}

func TestFormGradingFailureKeepsAnswer(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	app.gemini.status = http.StatusInternalServerError
	app.gemini.body = `{"error":{"message":"model overloaded"}}`
	cookie := sessionCookie(t, app.do(http.MethodGet, "/", nil))

	postForm(app, "/quiz/start", url.Values{"count": {"1"}}, cookie)
	w := postForm(app, "/quiz/answer", url.Values{"answer": {"إجابتي الأولى"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = app.do(http.MethodGet, "/", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, services.FailurePrefix)
	assert.Contains(t, body, "إجابتي الأولى</textarea>")
}

func TestQuizAPIFlow(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	cookie := &http.Cookie{Name: SessionCookieName, Value: uuid.NewString()}

	w := app.do(http.MethodPost, "/api/quiz/start", map[string]int{"count": 2}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeQuizResponse(t, w)
	assert.Equal(t, models.PhaseQuiz, resp.State.Phase)
	require.NotNil(t, resp.View.Quiz)
	assert.Nil(t, resp.View.Setup)

	w = app.do(http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "my answer"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeQuizResponse(t, w)
	q := resp.State.SelectedQuestions[0]
	rec, ok := resp.State.Answers[q.ID]
	require.True(t, ok)
	assert.Equal(t, models.GradeCorrect, rec.Status)
	assert.Equal(t, 10, rec.Score)
	assert.Equal(t, "my answer", rec.UserAnswer)
	assert.False(t, resp.State.Loading)

	w = app.do(http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "again"}, cookie)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_ANSWERED", decodeError(t, w).Code)

	w = app.do(http.MethodPost, "/api/quiz/reset", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeQuizResponse(t, w).State.Answers)

	w = app.do(http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "second try"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeQuizResponse(t, w).State.Answers, 1)

	w = app.do(http.MethodPost, "/api/quiz/next", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeQuizResponse(t, w).State.CurrentIndex)

	w = app.do(http.MethodPost, "/api/quiz/next", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeQuizResponse(t, w)
	assert.Equal(t, models.PhaseResults, resp.State.Phase)
	require.NotNil(t, resp.View.Results)
	assert.Equal(t, 100, resp.View.Results.Summary.Percentage)

	w = app.do(http.MethodGet, "/quiz/results.xlsx", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quiz-results-100.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())

	w = app.do(http.MethodPost, "/api/quiz/restart", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeQuizResponse(t, w)
	assert.Equal(t, models.PhaseSetup, resp.State.Phase)
	assert.Empty(t, resp.State.Answers)
}

func TestQuizAPIRejections(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	cookie := &http.Cookie{Name: SessionCookieName, Value: uuid.NewString()}

	w := app.do(http.MethodPost, "/api/quiz/skip", nil, cookie)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_PHASE", decodeError(t, w).Code)

	w = app.do(http.MethodPost, "/api/quiz/start", map[string]int{"count": -1}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUESTION_COUNT", decodeError(t, w).Code)

	w = app.do(http.MethodPost, "/api/quiz/start", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeQuizResponse(t, w).State.SelectedQuestions, models.DefaultQuestionCount)

	w = app.do(http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "   "}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_ANSWER", decodeError(t, w).Code)
	assert.Zero(t, app.gemini.calls.Load())

	w = app.do(http.MethodGet, "/quiz/results.xlsx", nil, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuizAPIRejectsWhileGrading(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	sessionID := uuid.NewString()
	cookie := &http.Cookie{Name: SessionCookieName, Value: sessionID}

	w := app.do(http.MethodPost, "/api/quiz/start", map[string]int{"count": 2}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeQuizResponse(t, w).State
	now := time.Now()
	state.Loading = true
	state.PendingSince = &now
	require.NoError(t, app.store.Save(context.Background(), sessionID, state))

	for _, path := range []string{"/api/quiz/answer", "/api/quiz/skip", "/api/quiz/next", "/api/quiz/reset", "/api/quiz/restart"} {
		w = app.do(http.MethodPost, path, map[string]string{"answer": "x"}, cookie)
		require.Equal(t, http.StatusConflict, w.Code, path)
		assert.Equal(t, "SUBMISSION_IN_FLIGHT", decodeError(t, w).Code, path)
	}
	assert.Zero(t, app.gemini.calls.Load())
}

func TestQuizAPIGradingFailureIsBanner(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)
	app.gemini.status = http.StatusInternalServerError
	app.gemini.body = `{"error":{"message":"model overloaded"}}`
	cookie := &http.Cookie{Name: SessionCookieName, Value: uuid.NewString()}

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/quiz/start", nil, cookie).Code)

	w := app.do(http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "my answer"}, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeQuizResponse(t, w)
	assert.Empty(t, resp.State.Answers)
	assert.False(t, resp.State.Loading)
	assert.True(t, strings.HasPrefix(resp.State.ErrorMessage, services.FailurePrefix))
	require.NotNil(t, resp.View.Quiz)
	assert.Equal(t, resp.State.ErrorMessage, resp.View.Quiz.Error)
}

func TestResultsUnavailableWithoutDatabase(t *testing.T) {
	app := newTestApp(t, "secret", correctVerdict)

	w := app.do(http.MethodGet, "/api/results", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "RESULTS_UNAVAILABLE", decodeError(t, w).Code)

	w = app.do(http.MethodGet, "/api/results/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, "", correctVerdict)

	w := app.do(http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["grading_configured"])
	assert.Equal(t, float64(3), body["question_bank_size"])
}
