// Package validation checks request payloads and reports field-level messages.
package validation

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Errors maps a json field name to a human-readable message.
type Errors map[string]string

// rule pairs a struct field/tag failure with the message reported for it.
type rule struct {
	field   string
	message string
}

// check runs the struct validator on v and translates failures through
// messages, keyed by "Field.tag". The first failure per field wins.
func check(v any, messages map[string]rule) Errors {
	errs := Errors{}
	err := instance().Struct(v)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		r, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			r = rule{field: strings.ToLower(fe.Field()), message: fe.Error()}
		}
		if _, seen := errs[r.field]; !seen {
			errs[r.field] = r.message
		}
	}
	return errs
}

// trimmed returns s with surrounding whitespace removed.
func trimmed(s string) string {
	return strings.TrimSpace(s)
}
