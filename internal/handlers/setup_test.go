package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/SAP-F-2025/essay-quiz-service/internal/cache"
	"github.com/SAP-F-2025/essay-quiz-service/internal/grading"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories/cachestore"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGemini is a stand-in for the upstream generateContent API.
type fakeGemini struct {
	server *httptest.Server
	calls  atomic.Int32
	status int
	body   string
}

func newFakeGemini(t *testing.T, text string) *fakeGemini {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{"content": map[string]interface{}{
				"parts": []interface{}{map[string]string{"text": text}},
			}},
		},
	})
	require.NoError(t, err)

	f := &fakeGemini{status: http.StatusOK, body: string(payload)}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		io.WriteString(w, f.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

type testApp struct {
	router   *gin.Engine
	gemini   *fakeGemini
	sessions *services.QuizSessionService
	store    repositories.SessionRepository
}

func testBank(n int) []models.Question {
	bank := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		bank = append(bank, models.Question{
			ID:          i,
			Question:    fmt.Sprintf("question %d", i),
			ModelAnswer: fmt.Sprintf("model answer %d", i),
		})
	}
	return bank
}

// newTestApp wires the full router against a fake upstream answering with graderText.
// An empty apiKey leaves grading unconfigured.
func newTestApp(t *testing.T, apiKey, graderText string) *testApp {
	t.Helper()
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()

	gemini := newFakeGemini(t, graderText)
	provider := grading.NewGeminiProvider("test-model", apiKey, gemini.server.URL, gemini.server.Client())
	gradingService := services.NewGradingService(provider, v, services.GradingServiceConfig{}, slogger)

	store := cachestore.NewSessionCache(cache.NewMemoryCache(), 0)
	sessions := services.NewQuizSessionService(
		store,
		nil,
		nil,
		services.NewLocalEvaluator(gradingService),
		testBank(3),
		services.QuizSessionConfig{
			NewRand: func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) },
		},
		slogger,
	)

	sm := services.NewServiceManager(gradingService, sessions, services.NewImportExportService(slogger, v), apiKey != "")
	router := gin.New()
	NewHandlerManager(sm, utils.NewSlogLogger(slogger)).SetupRoutes(router, RouterOptions{})

	return &testApp{router: router, gemini: gemini, sessions: sessions, store: store}
}

func (a *testApp) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("response set no %s cookie", SessionCookieName)
	return nil
}

func decodeQuizResponse(t *testing.T, w *httptest.ResponseRecorder) QuizResponse {
	t.Helper()
	var resp QuizResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.State)
	return resp
}
