package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for missing or malformed values.
// All field failures are reported together in one error wrapping ErrInvalidInput.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewError("validateConfig", errors.ErrInvalidInput).
			WithMessage("configuration is nil")
	}

	var problems []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.NewError("validateConfig", errors.Mark(errors.ErrInvalidInput, err))
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	if c.Endpoint != "" {
		if err := validate.Var(c.Endpoint, "url"); err != nil {
			problems = append(problems, fmt.Sprintf("endpoint %q is not a valid URL", c.Endpoint))
		}
	}

	if len(problems) > 0 {
		return errors.NewError("validateConfig", errors.ErrInvalidInput).
			WithMessage(strings.Join(problems, "; "))
	}

	return nil
}

// describe renders a field error using the configuration key name.
func describe(fe validator.FieldError) string {
	key := fieldKeys[fe.StructField()]
	if key == "" {
		key = fe.Field()
	}
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", key)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

var fieldKeys = map[string]string{
	"Endpoint":    "endpoint",
	"Region":      "region",
	"Bucket":      "bucket",
	"PresignTTL":  "presign_ttl",
	"PartSize":    "part_size",
	"Concurrency": "concurrency",
}
