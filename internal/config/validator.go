// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// Resolve calls `validateStruct` after the rule table has populated a
// `Config`.  The rule table already rejects a missing BOT_TOKEN, so these
// tags are a backstop for configs assembled by hand (tests, tools) and
// guard the one invariant the table cannot express: Variant is never nil.
//
// Field names in errors come from the `env` tag, so a failure reads
// `BOT_TOKEN` rather than `BotToken`.

package config

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	return val
}

//
// public API
//

// Validate checks a Config that did not come from Resolve.
func (c *Config) Validate() error { return validateStruct(c) }

// validateStruct returns the first validation failure as an *Error.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if errors.As(err, &fes) && len(fes) > 0 {
		fe := fes[0]
		if fe.Tag() == "required" {
			return &Error{Key: fe.Field(), Kind: KindMissingRequired}
		}
		return &Error{Key: fe.Field(), Kind: KindMalformed, Err: fe}
	}
	return err
}
