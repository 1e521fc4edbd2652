// Package grading talks to the external text-generation API that grades answers and to
// the grading proxy from client programs.
package grading

import (
	"context"
	"net/http"
)

// HTTPDoer abstracts HTTP clients used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TextGenerator sends one text instruction to a model and returns its text answer.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
