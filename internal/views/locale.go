package views

import "github.com/SAP-F-2025/essay-quiz-service/internal/models"

// UI text. The interface is Arabic and laid out right to left.
const (
	Direction = "rtl"
	Language  = "ar"

	TitleText    = "نظام اختبار المقالات الذكي"
	SubtitleText = "مدعوم بواسطة Google Gemini AI"

	SetupInfoText   = "تم تفعيل Gemini AI بنجاح. اختر عدد الأسئلة وابدأ الاختبار!"
	countLabelText  = "عدد الأسئلة (%d)"
	StartText       = "بدء الامتحان"
	EmptyBankText   = "لا توجد أسئلة متاحة."
	counterText     = "سؤال %d من %d"
	PlaceholderText = "اكتب إجابتك هنا..."
	SubmitText      = "إرسال الإجابة"
	LoadingText     = "جاري التصحيح..."
	ResetText       = "إعادة"
	SkipText        = "تخطي"
	NextText        = "التالي"
	ResultsText     = "النتائج"
	scoreText       = "Score: %d/10"
	ModelAnswerText = "الإجابة النموذجية:"

	ResultsTitleText  = "انتهى الاختبار!"
	percentageText    = "%%%d"
	totalText         = "مجموع النقاط: %d من %d"
	ReviewHeadingText = "مراجعة الإجابات:"
	reviewQuestion    = "س: %s"
	reviewScoreText   = "%d/10"
	UserAnswerText    = "إجابتك:"
	GraderText        = "المصحح:"
	RestartText       = "اختبار جديد"
)

var statusLabels = map[models.GradeStatus]string{
	models.GradeCorrect:   "✅ إجابة صحيحة",
	models.GradePartial:   "⚠️ إجابة ناقصة",
	models.GradeIncorrect: "❌ إجابة خاطئة",
}

var statusBadges = map[models.GradeStatus]string{
	models.GradeCorrect:   "صحيحة",
	models.GradePartial:   "ناقصة",
	models.GradeIncorrect: "خاطئة",
}
