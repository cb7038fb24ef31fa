package core

// validation.go decides whether imported rows form a usable record sequence,
// and validates single data points entered by hand.
//
// Sequence validation is deliberately shallow: it checks that every row has a
// category and a numeric value, nothing more. Range checks, blank categories
// and duplicates belong to the form layer (ValidateDataPoint).

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is a list of field errors that is itself an error.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// IsValidSequence reports whether rows can be charted.
// An empty sequence is invalid; so is any row without a category key, without
// a value key, or whose value is not a number.
func IsValidSequence(rows []Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		if row == nil {
			return false
		}
		if _, ok := row[FieldCategory]; !ok {
			return false
		}
		v, ok := row[FieldValue]
		if !ok {
			return false
		}
		if _, isNum := v.(float64); !isNum {
			return false
		}
	}
	return true
}

// Records converts a valid row sequence into records.
// Returns ErrInvalidSequence if IsValidSequence(rows) is false.
func Records(rows []Row) ([]DataRecord, error) {
	if !IsValidSequence(rows) {
		return nil, ErrInvalidSequence
	}

	records := make([]DataRecord, len(rows))
	for i, row := range rows {
		records[i] = DataRecord{
			Category: categoryText(row[FieldCategory]),
			Value:    row[FieldValue].(float64),
		}
	}
	return records, nil
}

// categoryText renders a category field as text. The import heuristic turns
// numeric-looking categories ("2024") into numbers; they come back as text here.
func categoryText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return FormatNumber(c)
	default:
		return fmt.Sprint(c)
	}
}

// ValidateRecord checks that a record may enter the dataset.
func ValidateRecord(r DataRecord) error {
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRecord)
	}
	if !isFinite(r.Value) {
		return fmt.Errorf("%w: value must be a finite number", ErrInvalidRecord)
	}
	return nil
}

// ValidateDataPoint validates a manually entered data point and builds the record.
// The category must be non-blank and the value a non-negative number.
func ValidateDataPoint(category, value string) (DataRecord, ValidationErrors) {
	var errs ValidationErrors

	category = strings.TrimSpace(category)
	if category == "" {
		errs = append(errs, ValidationError{
			Field:   FieldCategory,
			Message: "category is required",
		})
	}

	var v float64
	raw := strings.TrimSpace(value)
	switch {
	case raw == "":
		errs = append(errs, ValidationError{
			Field:   FieldValue,
			Message: "value is required",
		})
	default:
		parsed, ok := ParseAmount(raw)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   FieldValue,
				Value:   raw,
				Message: "invalid number: value must be a number",
			})
		} else if parsed < 0 {
			errs = append(errs, ValidationError{
				Field:   FieldValue,
				Value:   raw,
				Message: "value must be a positive number",
			})
		} else {
			v = parsed
		}
	}

	if len(errs) > 0 {
		return DataRecord{}, errs
	}
	return DataRecord{Category: category, Value: v}, nil
}
