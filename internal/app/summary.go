package app

import (
	"math"

	"usmle-quiz-service/internal/domain"
)

// fallbackTopic groups questions that carry no classification at all.
const fallbackTopic = "Other"

// Summarize computes a ResultSummary from an ordered answer list. It is a
// pure function: an empty answer list yields zeroed fields, never an error.
// Timed-out questions count as answered (and incorrect) for accuracy.
func Summarize(answers []domain.AnswerRecord, questions []domain.Question) domain.ResultSummary {
	summary := domain.ResultSummary{
		TotalQuestions: len(questions),
		PerTopic:       make(map[string]domain.TopicBreakdown),
	}
	if len(answers) == 0 {
		return summary
	}

	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	correctRun, incorrectRun := 0, 0
	for _, rec := range answers {
		if rec.Correct {
			correctRun++
			incorrectRun = 0
			if correctRun > summary.LongestCorrectStreak {
				summary.LongestCorrectStreak = correctRun
			}
		} else {
			incorrectRun++
			correctRun = 0
			if incorrectRun > summary.LongestIncorrectStreak {
				summary.LongestIncorrectStreak = incorrectRun
			}
		}

		topic := classify(byID[rec.QuestionID])
		breakdown := summary.PerTopic[topic]
		breakdown.Total++
		if rec.Correct {
			breakdown.Correct++
		}
		summary.PerTopic[topic] = breakdown

		summary.TimeTakenSeconds += rec.TimeSpentSeconds
	}

	summary.Score = scoreOf(answers)
	summary.AccuracyPercent = accuracyPercent(summary.Score, answeredOf(answers))
	return summary
}

// accuracyPercent rounds correct/answered to the nearest whole percent and
// never divides by zero.
func accuracyPercent(correct, answered int) int {
	if answered == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(answered) * 100))
}

// classify resolves the question's grouping label with a fixed precedence:
// Topic, then System, then Subject, then the literal "Other".
func classify(q domain.Question) string {
	switch {
	case q.Topic != "":
		return q.Topic
	case q.System != "":
		return q.System
	case q.Subject != "":
		return q.Subject
	default:
		return fallbackTopic
	}
}
