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
)

const (
	// DefaultGeminiBaseURL is the default Gemini API base URL.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.0-flash-exp"

	// APIKeySetting names the environment variable holding the credential.
	APIKeySetting = "GEMINI_API_KEY"
)

// maxErrorBody bounds how much of an upstream error body is read.
const maxErrorBody = 64 << 10

// GeminiProvider implements TextGenerator for the Gemini generateContent API. The key
// travels as the "key" query parameter and never leaves this type.
type GeminiProvider struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  HTTPDoer
}

// NewGeminiProvider constructs a provider. An empty apiKey is accepted; Generate then
// fails with a configuration error without touching the network.
func NewGeminiProvider(model, apiKey, baseURL string, client HTTPDoer) *GeminiProvider {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiProvider{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt to Gemini and returns candidates[0].content.parts[0].text.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.APIKey == "" {
		return "", &apperrors.ConfigurationError{Setting: APIKeySetting}
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", apperrors.NewUpstreamError(resp.StatusCode, upstreamErrorMessage(body), nil)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if ctx.Err() != nil {
			return "", transportError(ctx.Err())
		}
		return "", apperrors.NewUpstreamFormatError("", fmt.Errorf("decode gemini response: %w", err))
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewUpstreamFormatError("", errors.New("gemini response has no candidates"))
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func (p *GeminiProvider) endpoint() string {
	query := url.Values{"key": {p.APIKey}}
	return fmt.Sprintf("%s/models/%s:generateContent?%s", p.BaseURL, url.PathEscape(p.Model), query.Encode())
}

// transportError converts a failed round trip into an UpstreamError. *url.Error is
// unwrapped because its message embeds the request URL, key included.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewUpstreamError(0, "", apperrors.ErrUpstreamTimeout)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return apperrors.NewUpstreamError(0, "", err)
}

// upstreamErrorMessage extracts error.message from an upstream error body.
func upstreamErrorMessage(body []byte) string {
	var parsed geminiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return "API Error"
}
