package controllerconfig

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(providerStructLevel, Config{})
	})
	return validate
}

// providerStructLevel requires exactly the provider sub-object that matches Target.
func providerStructLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)

	switch c.Target {
	case "aws":
		if c.AWS == nil {
			sl.ReportError(c.AWS, "AWS", "aws", "required_for_target", c.Target)
		}
		if c.GCP != nil {
			sl.ReportError(c.GCP, "GCP", "gcp", "excluded_for_target", c.Target)
		}
	case "gcp":
		if c.GCP == nil {
			sl.ReportError(c.GCP, "GCP", "gcp", "required_for_target", c.Target)
		}
		if c.AWS != nil {
			sl.ReportError(c.AWS, "AWS", "aws", "excluded_for_target", c.Target)
		}
	}
}

// Validate checks c against the controller config schema.
func Validate(c *Config) error {
	if c == nil {
		return errors.New("controller config is nil")
	}

	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("controller config validation: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("controller config does not match schema: %s", strings.Join(msgs, "; "))
}
