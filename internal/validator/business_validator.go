package validator

import (
	"fmt"
)

// ValidateGenerateRequest checks the whole ingestion payload. Any failing
// item fails the batch; nothing is persisted on a validation error.
func (v *Validator) ValidateGenerateRequest(req *AssessmentGenerateRequest) ValidationErrors {
	errs := v.Validate(req)
	errs = append(errs, validateQuestionPayloads(req.Questions)...)
	return normalize(errs)
}

// validateQuestionPayloads enforces the rules struct tags cannot express:
// choice IDs must be unique within an item and the answer key must point
// at one of them.
func validateQuestionPayloads(questions []QuestionPayload) ValidationErrors {
	var errs ValidationErrors

	for i, q := range questions {
		seen := make(map[string]bool, len(q.Choices))
		keyFound := false

		for _, c := range q.Choices {
			if seen[c.ID] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("questions[%d].choices", i),
					Message: fmt.Sprintf("duplicate choice id %q", c.ID),
					Value:   c.ID,
					Rule:    "unique_choice_id",
				})
			}
			seen[c.ID] = true
			if c.ID == q.IsCorrect {
				keyFound = true
			}
		}

		if !keyFound {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("questions[%d].is_correct", i),
				Message: fmt.Sprintf("answer key %q is not among the choice ids", q.IsCorrect),
				Value:   q.IsCorrect,
				Rule:    "answer_key_in_choices",
			})
		}
	}

	return errs
}

// normalize collapses an empty slice to nil so callers can test with == nil.
func normalize(errs ValidationErrors) ValidationErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
