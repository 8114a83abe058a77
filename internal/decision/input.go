package decision

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinQuestionLength is the shortest question accepted for evaluation.
const MinQuestionLength = 10

var errQuestionTooShort = fmt.Errorf("question must be at least %d characters", MinQuestionLength)

// ValidateQuestion rejects empty or too-short questions.
func ValidateQuestion(question string) error {
	if utf8.RuneCountInString(strings.TrimSpace(question)) < MinQuestionLength {
		return errQuestionTooShort
	}
	return nil
}

// ValidateDimensions rejects score dimensions outside [MinDimension,MaxDimension].
func ValidateDimensions(impact, risk, urgency int) error {
	var errs []error
	check := func(name string, v int) {
		if v < MinDimension || v > MaxDimension {
			errs = append(errs, fmt.Errorf("%s must be between %d and %d", name, MinDimension, MaxDimension))
		}
	}
	check("impact", impact)
	check("risk", risk)
	check("urgency", urgency)
	return errors.Join(errs...)
}
