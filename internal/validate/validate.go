// Package validate wires github.com/go-playground/validator/v10 with an
// English translator, the same way the teacher wires it with a Chinese
// one in internal/handler.NewHandler: one shared *validator.Validate and
// ut.Translator, exposed as a Validator callers hold onto for the
// lifetime of the process.
package validate

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates structs and translates field errors to English.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with struct-level validation enabled, matching
// the teacher's validator.WithRequiredStructEnabled() option.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &Validator{validate: validate, translator: trans}, nil
}

// FieldError is one translated validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Struct validates s, returning translated field errors instead of the
// raw validator.ValidationErrors.
func (v *Validator) Struct(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return out
}
