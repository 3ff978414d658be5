package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/nsbs/certify/internal/pkg/apperrors"
)

// rawSubmitExamRequest keeps both fields undecoded so each shape violation
// gets its own message.
type rawSubmitExamRequest struct {
	Answers   json.RawMessage `json:"answers"`
	TimeSpent json.RawMessage `json:"timeSpent"`
}

// DecodeSubmitExamRequest parses and validates a submit body. Answers must be an
// object of string or number values; timeSpent must be a finite number in
// [0, maxTimeSpent] seconds.
func DecodeSubmitExamRequest(body []byte, maxTimeSpent int) (*SubmitExamRequest, error) {
	var raw rawSubmitExamRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewValidationError("body", "Request body must be a JSON object")
	}

	answers, err := decodeAnswers(raw.Answers)
	if err != nil {
		return nil, err
	}

	timeSpent, err := decodeTimeSpent(raw.TimeSpent, maxTimeSpent)
	if err != nil {
		return nil, err
	}

	return &SubmitExamRequest{Answers: answers, TimeSpent: timeSpent}, nil
}

func decodeAnswers(raw json.RawMessage) (map[string]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperrors.NewValidationError("answers", "answers must be an object")
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return nil, apperrors.NewValidationError("answers", "answers must be an object")
	}

	answers := make(map[string]string, len(values))
	for key, v := range values {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, apperrors.NewValidationError("answers", fmt.Sprintf("answers.%s must be a string or number", key))
			}
			answers[key] = s
		default:
			var n json.Number
			if err := json.Unmarshal(v, &n); err != nil {
				return nil, apperrors.NewValidationError("answers", fmt.Sprintf("answers.%s must be a string or number", key))
			}
			if f, err := strconv.ParseFloat(n.String(), 64); err != nil || math.IsInf(f, 0) {
				return nil, apperrors.NewValidationError("answers", fmt.Sprintf("answers.%s must be a finite number", key))
			}
			// The literal is kept as sent; grading compares it verbatim
			answers[key] = n.String()
		}
	}
	return answers, nil
}

func decodeTimeSpent(raw json.RawMessage, maxTimeSpent int) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, apperrors.NewValidationError("timeSpent", "timeSpent is required")
	}

	// json.Number would also accept a quoted numeral
	var n json.Number
	if trimmed[0] == '"' || json.Unmarshal(trimmed, &n) != nil {
		return 0, apperrors.NewValidationError("timeSpent", "timeSpent must be a finite number")
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperrors.NewValidationError("timeSpent", "timeSpent must be a finite number")
	}
	if f < 0 || f > float64(maxTimeSpent) {
		return 0, apperrors.NewValidationError("timeSpent", fmt.Sprintf("timeSpent must be between 0 and %d seconds", maxTimeSpent))
	}
	return f, nil
}
