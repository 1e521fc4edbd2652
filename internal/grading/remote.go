package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
)

// EvaluatePath is the grading proxy route.
const EvaluatePath = "/api/evaluate"

// RemoteEvaluator grades answers by calling a grading proxy over HTTP. It never sees the
// upstream credential.
type RemoteEvaluator struct {
	Endpoint  string
	Client    HTTPDoer
	validator *validator.Validator
}

// NewRemoteEvaluator targets the proxy at baseURL, e.g. "http://localhost:8080".
func NewRemoteEvaluator(baseURL string, client HTTPDoer, v *validator.Validator) *RemoteEvaluator {
	if client == nil {
		client = http.DefaultClient
	}
	if v == nil {
		v = validator.New()
	}
	return &RemoteEvaluator{
		Endpoint:  strings.TrimRight(baseURL, "/") + EvaluatePath,
		Client:    client,
		validator: v,
	}
}

// Evaluate posts the request to the proxy and decodes its verdict.
func (e *RemoteEvaluator) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewUpstreamError(0, "", apperrors.ErrUpstreamTimeout)
		}
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, apperrors.NewUpstreamError(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, apperrors.NewUpstreamError(resp.StatusCode, "", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errBody models.EvaluateErrorResponse
		_ = json.Unmarshal(body, &errBody)
		return nil, apperrors.NewUpstreamError(resp.StatusCode, errBody.Error, nil)
	}
	return DecodeEvaluation(body, e.validator)
}
