package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("brig_lifetime", validateLifetime); err != nil {
		panic(err)
	}
	return v
}

func validateLifetime(fl validator.FieldLevel) bool {
	return lifetimeRE.MatchString(fl.Field().String())
}

// Validate runs struct-tag validation plus the one cross-field invariant
// struct tags can't express: every dataset.server must name a server that
// exists in the same config (spec §3 invariant).
func Validate(c *Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	for _, ds := range c.Datasets {
		if _, ok := c.findServer(ds.Server); !ok {
			return fmt.Errorf("dataset %q references unknown server %q", ds.Name, ds.Server)
		}
	}
	return nil
}
