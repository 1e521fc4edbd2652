package grading

import (
	"testing"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildPromptEmbedsFieldsAndContract(t *testing.T) {
	prompt := BuildPrompt(&models.EvaluateRequest{
		Question:    "What is photosynthesis?",
		ModelAnswer: "Plants turning light into chemical energy.",
		UserAnswer:  "Plants eat sunlight.",
	}, "")

	assert.Contains(t, prompt, "Question: What is photosynthesis?")
	assert.Contains(t, prompt, "Model Answer: Plants turning light into chemical energy.")
	assert.Contains(t, prompt, "Student Answer: Plants eat sunlight.")
	assert.Contains(t, prompt, `the "feedback" field MUST be in Arabic`)
	assert.Contains(t, prompt, `"status": "correct" | "incorrect" | "partial"`)
	assert.Contains(t, prompt, "from 0 to 10")
	assert.Contains(t, prompt, "Provide ONLY a valid JSON object")
}

func TestBuildPromptFeedbackLanguage(t *testing.T) {
	prompt := BuildPrompt(&models.EvaluateRequest{Question: "Q", ModelAnswer: "M", UserAnswer: "U"}, "French")

	assert.Contains(t, prompt, `the "feedback" field MUST be in French`)
	assert.NotContains(t, prompt, "Arabic")
}
