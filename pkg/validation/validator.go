package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxASN is the largest 32-bit AS number
	MaxASN int64 = 1<<32 - 1
	// MaxQueryLimit bounds list sizes requested through the query API
	MaxQueryLimit = 1000
)

func init() {
	validate = validator.New()
}

// Struct validates v using its `validate` struct tags
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateASN checks that asn fits the 32-bit AS number space
func ValidateASN(asn int64) error {
	if asn < 0 || asn > MaxASN {
		return fmt.Errorf("asn %d is outside [0, %d]", asn, MaxASN)
	}
	return nil
}

// ValidateLimit checks a requested list size
func ValidateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", limit)
	}
	if limit > MaxQueryLimit {
		return fmt.Errorf("limit must not exceed %d, got %d", MaxQueryLimit, limit)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			msgs = append(msgs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			msgs = append(msgs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "oneof":
			msgs = append(msgs, fmt.Errorf("%s: must be one of [%s]", field, param))
		default:
			msgs = append(msgs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}

	return errors.Join(msgs...)
}
