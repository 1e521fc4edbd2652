package models

import "math"

// Summary is the aggregate shown on the results view.
type Summary struct {
	Answered   int `json:"answered"`
	TotalScore int `json:"totalScore"`
	MaxScore   int `json:"maxScore"`
	Percentage int `json:"percentage"`
}

// PassingPercentage splits results into the high and low bands.
const PassingPercentage = 50

// Summarize computes round(sum(score) / (answered*10) * 100). With nothing answered the
// percentage is 0.
func Summarize(records []AnswerRecord) Summary {
	sum := Summary{Answered: len(records), MaxScore: len(records) * MaxScore}
	for _, rec := range records {
		sum.TotalScore += rec.Score
	}
	if sum.MaxScore == 0 {
		return sum
	}
	sum.Percentage = int(math.Round(float64(sum.TotalScore) / float64(sum.MaxScore) * 100))
	return sum
}

func (s Summary) Passed() bool {
	return s.Percentage >= PassingPercentage
}
