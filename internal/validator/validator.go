package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/accessgenius/assessment-service/internal/models"
)

// ValidationError describes one failed rule on one field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator wraps go-playground struct validation plus the domain rules
// that tags alone cannot express.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	// Closed enum tags
	_ = validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		return models.DifficultyLevel(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("assessment_status", func(fl validator.FieldLevel) bool {
		return models.AssessmentStatus(fl.Field().String()).Valid()
	})

	return &Validator{validate: validate}
}

// Validate runs struct tag validation and converts the result.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return toValidationErrors(err)
}

func toValidationErrors(err error) ValidationErrors {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "struct"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}
