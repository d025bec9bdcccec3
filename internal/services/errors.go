package services

import (
	"errors"
	"fmt"

	"github.com/accessgenius/assessment-service/internal/validator"
)

// Sentinel errors matched with errors.Is in the handlers.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrAssessmentAccessDenied = errors.New("assessment access denied")
	ErrAssessmentExpired      = errors.New("assessment has expired")
	ErrAssessmentNotActive    = errors.New("assessment is not active")

	ErrQuestionNotFound = errors.New("question not found")

	ErrNoAssessmentData = errors.New("no assessment data for the requested window")

	ErrInvalidStatus    = errors.New("invalid assessment status")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationErrors is re-exported so handlers can match it with errors.As
// without importing the validator package directly.
type ValidationErrors = validator.ValidationErrors

// BusinessRuleError describes a domain rule violation that is not a simple
// field validation failure.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}
