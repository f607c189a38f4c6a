package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates request payloads using struct tags and reports errors in English.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// ValidationError maps a payload field name (as it appears in JSON) to a readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, msg := range e.Fields {
		messages = append(messages, msg)
	}
	return strings.Join(messages, "; ")
}

// New creates a Validator with the default English translations registered.
func New() (*Validator, error) {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, translator: translator}, nil
}

// Struct validates s and returns a *ValidationError describing every failed field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Translate(v.translator)
	}

	return &ValidationError{Fields: fields}
}
