// Package validator wraps go-playground/validator with JSON tag field
// names, translated messages and field-level error collection.
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// Validator wraps a validator.Validate instance with translations.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	global *Validator
	once   sync.Once
)

// Global returns the process-wide validator, initializing it on first use.
func Global() *Validator {
	once.Do(func() {
		global = New()
	})
	return global
}

// New creates a Validator with default configuration.
func New() *Validator {
	v := validator.New()

	// Report field names from json/form tags, not Go identifiers.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	_ = entrans.RegisterDefaultTranslations(v, trans)

	return &Validator{validate: v, trans: trans}
}

// Struct validates a struct and returns field-level errors, or nil.
func (v *Validator) Struct(s any) *ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationErrors{Errors: []FieldError{{Message: err.Error()}}}
	}

	out := &ValidationErrors{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: fe.Translate(v.trans),
		})
	}
	return out
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(value any, tag string) error {
	return v.validate.Var(value, tag)
}
