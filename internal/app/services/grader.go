package services

import (
	"math"
	"strconv"

	"github.com/nsbs/certify/internal/app/models"
)

// GradeResult is the outcome of grading one submission against a question set
type GradeResult struct {
	Score          int
	Passed         bool
	CorrectAnswers int
	TotalQuestions int
	Answers        map[string]models.AnswerRecord
}

// CalculateScore returns round(correct / total * 100), or 0 for an empty question set
func CalculateScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// answerKey is the question id, or the zero-based position for a question without one
func answerKey(q models.ExamQuestion, index int) string {
	if q.ID != "" {
		return q.ID
	}
	return strconv.Itoa(index)
}

// GradeSubmission marks every question by exact equality with its correct answer.
// The returned answer records never carry the correct answer.
func GradeSubmission(questions []models.ExamQuestion, answers map[string]string, passingScore int) GradeResult {
	records := make(map[string]models.AnswerRecord, len(questions))
	correct := 0

	for i, q := range questions {
		key := answerKey(q, i)
		submitted, answered := answers[key]
		isCorrect := answered && submitted == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		records[key] = models.AnswerRecord{Answer: submitted, Correct: isCorrect}
	}

	score := CalculateScore(correct, len(questions))
	return GradeResult{
		Score:          score,
		Passed:         score >= passingScore,
		CorrectAnswers: correct,
		TotalQuestions: len(questions),
		Answers:        records,
	}
}
