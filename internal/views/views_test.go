package views

import (
	"bytes"
	"testing"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizState() *models.QuizState {
	s := models.NewQuizState(2)
	s.Phase = models.PhaseQuiz
	s.SelectedQuestions = []models.Question{
		{ID: 4, Question: "ما هو البروتوكول؟", ModelAnswer: "مجموعة قواعد"},
		{ID: 8, Question: "ما هي الشبكة؟", ModelAnswer: "أجهزة مترابطة"},
	}
	return s
}

func TestRenderSetup(t *testing.T) {
	s := models.NewQuizState(3)
	s.ErrorMessage = "oops"

	page := Render(s, 5)

	require.NotNil(t, page.Setup)
	assert.Nil(t, page.Quiz)
	assert.Nil(t, page.Results)
	assert.Equal(t, TitleText, page.Title)
	assert.Equal(t, "rtl", page.Dir)
	assert.Equal(t, "عدد الأسئلة (3)", page.Setup.CountLabel)
	assert.Len(t, page.Setup.Options, 5)
	assert.True(t, page.Setup.Options[2].Selected)
	assert.Equal(t, "oops", page.Setup.Error)
	assert.False(t, page.Setup.Start.Disabled)
}

func TestRenderSetupClampsToBank(t *testing.T) {
	page := Render(models.NewQuizState(3), 2)
	assert.Equal(t, 2, page.Setup.Count)

	empty := Render(models.NewQuizState(3), 0)
	assert.True(t, empty.Setup.Start.Disabled)
	assert.Empty(t, empty.Setup.Options)
}

func TestRenderQuizUnanswered(t *testing.T) {
	page := Render(quizState(), 10)

	q := page.Quiz
	require.NotNil(t, q)
	assert.Equal(t, "سؤال 1 من 2", q.Counter)
	assert.Equal(t, 50, q.Progress)
	assert.Equal(t, "ما هو البروتوكول؟", q.Question)
	assert.False(t, q.ReadOnly)
	require.NotNil(t, q.Submit)
	assert.Equal(t, SubmitText, q.Submit.Label)
	assert.False(t, q.Submit.Disabled)
	require.NotNil(t, q.Skip)
	assert.Nil(t, q.Feedback)
	assert.Nil(t, q.Next)
}

func TestRenderQuizPrefillsDraft(t *testing.T) {
	state := quizState()
	state.DraftAnswer = "قواعد الاتصال"
	state.ErrorMessage = "حدث خطأ: boom"

	q := Render(state, 10).Quiz
	require.NotNil(t, q)
	require.NotNil(t, q.Submit)
	assert.Equal(t, "قواعد الاتصال", q.Answer)
	assert.Equal(t, "حدث خطأ: boom", q.Error)
}

func TestRenderQuizLoading(t *testing.T) {
	s := quizState()
	s.Loading = true

	q := Render(s, 10).Quiz
	assert.True(t, q.Submit.Disabled)
	assert.Equal(t, LoadingText, q.Submit.Label)
	assert.True(t, q.ReadOnly)
	assert.True(t, q.Skip.Disabled)
}

func TestRenderQuizAnswered(t *testing.T) {
	s := quizState()
	s.CurrentIndex = 1
	s.Answers[8] = models.AnswerRecord{
		QuestionID:  8,
		Question:    "ما هي الشبكة؟",
		ModelAnswer: "أجهزة مترابطة",
		UserAnswer:  "حواسيب",
		Status:      models.GradePartial,
		Feedback:    "ينقص ذكر الترابط",
		Score:       5,
	}

	q := Render(s, 10).Quiz
	assert.Nil(t, q.Submit)
	assert.True(t, q.ReadOnly)
	assert.Equal(t, "حواسيب", q.Answer)
	assert.Equal(t, "partial", q.AnswerClass)
	require.NotNil(t, q.Feedback)
	assert.Equal(t, "⚠️ إجابة ناقصة", q.Feedback.StatusLabel)
	assert.Equal(t, "Score: 5/10", q.Feedback.Score)
	assert.Equal(t, "أجهزة مترابطة", q.Feedback.ModelAnswer)
	assert.Equal(t, ResultsText, q.Next.Label)
	assert.NotNil(t, q.Reset)
}

func TestRenderQuizCorrectHidesModelAnswer(t *testing.T) {
	s := quizState()
	s.Answers[4] = models.AnswerRecord{QuestionID: 4, Status: models.GradeCorrect, Score: 10, ModelAnswer: "مجموعة قواعد"}

	q := Render(s, 10).Quiz
	assert.Empty(t, q.Feedback.ModelAnswer)
	assert.Equal(t, NextText, q.Next.Label)
}

func TestRenderResults(t *testing.T) {
	s := quizState()
	s.Phase = models.PhaseResults
	s.Answers[8] = models.AnswerRecord{QuestionID: 8, Question: "second", Status: models.GradeIncorrect, Score: 0}
	s.Answers[4] = models.AnswerRecord{QuestionID: 4, Question: "first", Status: models.GradeCorrect, Score: 10, UserAnswer: "a"}

	r := Render(s, 10).Results
	require.NotNil(t, r)
	assert.Equal(t, "%50", r.Percentage)
	assert.Equal(t, "high", r.PercentageClass)
	assert.Equal(t, "مجموع النقاط: 10 من 20", r.Total)
	require.Len(t, r.Reviews, 2)
	assert.Equal(t, "س: first", r.Reviews[0].Question)
	assert.Equal(t, "صحيحة", r.Reviews[0].Badge)
	assert.Equal(t, "10/10", r.Reviews[0].Score)
	assert.Equal(t, "خاطئة", r.Reviews[1].Badge)
	assert.Equal(t, RestartText, r.Restart.Label)
}

func TestRenderResultsNothingAnswered(t *testing.T) {
	s := quizState()
	s.Phase = models.PhaseResults

	r := Render(s, 10).Results
	assert.Equal(t, "%0", r.Percentage)
	assert.Equal(t, "low", r.PercentageClass)
	assert.Empty(t, r.Reviews)
	assert.True(t, r.Export.Disabled)
}

func TestHTMLTemplateRendersEveryPhase(t *testing.T) {
	tmpl := HTMLTemplate()

	answered := quizState()
	answered.Answers[4] = models.AnswerRecord{QuestionID: 4, Status: models.GradeIncorrect, Feedback: "<b>no</b>", ModelAnswer: "مجموعة قواعد"}
	results := quizState()
	results.Phase = models.PhaseResults
	draft := quizState()
	draft.DraftAnswer = "قواعد <الاتصال>"

	cases := map[string]struct {
		state *models.QuizState
		want  []string
	}{
		"setup":    {models.NewQuizState(3), []string{StartText, `action="/quiz/start"`}},
		"quiz":     {quizState(), []string{SubmitText, `name="answer"`, SkipText}},
		"draft":    {draft, []string{"قواعد &lt;الاتصال&gt;</textarea>"}},
		"answered": {answered, []string{"❌ إجابة خاطئة", "&lt;b&gt;no&lt;/b&gt;", ModelAnswerText}},
		"results":  {results, []string{ResultsTitleText, RestartText}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, PageTemplate, Render(tc.state, 5)))
			for _, want := range tc.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
