package grading

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
)

// DefaultFeedbackLanguage is the language the grader writes feedback in.
const DefaultFeedbackLanguage = "Arabic"

const promptTemplate = `Role: You are a strict but fair academic grader.
Task: Compare the Student Answer to the Model Answer for the given Question.
Language: Output logic in English, but the "feedback" field MUST be in %[1]s.

Question: %[2]s
Model Answer: %[3]s
Student Answer: %[4]s

Instructions:
1. If the Student Answer is completely wrong or irrelevant, status is "incorrect".
2. If the Student Answer matches the key concepts of Model Answer, status is "correct".
3. If the Student Answer is correct but misses key details mentioned in Model Answer, status is "partial".
4. "feedback" should explain WHY it is correct, partial, or wrong in %[1]s. If partial, explicitly state what is missing.
5. "score" is an integer from 0 to %[5]d.

Output Format: Provide ONLY a valid JSON object. Do not wrap in markdown code blocks.
{
    "status": "correct" | "incorrect" | "partial",
    "feedback": "%[1]s explanation here...",
    "score": number
}`

// BuildPrompt embeds the three request fields and the output contract into the grading
// instruction.
func BuildPrompt(req *models.EvaluateRequest, feedbackLanguage string) string {
	if strings.TrimSpace(feedbackLanguage) == "" {
		feedbackLanguage = DefaultFeedbackLanguage
	}
	return fmt.Sprintf(promptTemplate,
		feedbackLanguage, req.Question, req.ModelAnswer, req.UserAnswer, models.MaxScore)
}
