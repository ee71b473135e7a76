package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type rule struct {
	check   validator.Func
	message string
}

// Messages take the field name as {0} and the rejected value as {1}.
var rules = map[string]rule{
	"api_key":  {isAPIKey, "{0} must be at least 16 characters long and contain no whitespace"},
	"bot_id":   {isBotID, "{0} must be non-empty, without whitespace and no longer than 64 characters: {1}"},
	"duration": {isPositiveDuration, "{0} must be a positive duration: {1}"},
}

// Built-in tags whose stock English message hides the rejected value.
var overriddenMessages = map[string]string{
	"http_url": "{0} must be a valid HTTP URL: {1}",
	"oneof":    "{0} must be one of the supported values, got: {1}",
}

// FieldError is one failed rule, already translated.
type FieldError struct {
	Field  string
	Detail string
}

func (e *FieldError) Error() string { return e.Detail }

// FieldErrors is returned by Struct. It unwraps to validator.ValidationErrors.
type FieldErrors struct {
	Fields []FieldError
	cause  validator.ValidationErrors
}

func (e *FieldErrors) Error() string {
	var b strings.Builder
	b.WriteString("invalid input:")
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.Detail)
	}
	return b.String()
}

func (e *FieldErrors) Unwrap() error { return e.cause }

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator returns a validator with English messages. Struct fields are
// reported by their `cli` tag when they have one.
func NewValidator() (*Validator, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("cli"); name != "" {
			return name
		}
		return fld.Name
	})

	locale := en.New()
	trans, ok := ut.New(locale, locale).GetTranslator("en")
	if !ok {
		return nil, errors.New("english translator unavailable")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("registering default translations: %w", err)
	}

	for tag, r := range rules {
		if err := validate.RegisterValidation(tag, r.check); err != nil {
			return nil, fmt.Errorf("registering %s rule: %w", tag, err)
		}
		if err := addMessage(validate, trans, tag, r.message); err != nil {
			return nil, err
		}
	}
	for tag, msg := range overriddenMessages {
		if err := addMessage(validate, trans, tag, msg); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: validate, trans: trans}, nil
}

func addMessage(validate *validator.Validate, trans ut.Translator, tag, msg string) error {
	err := validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fmt.Sprint(fe.Value()))
			return s
		},
	)
	if err != nil {
		return fmt.Errorf("registering message for %s: %w", tag, err)
	}
	return nil
}

// Struct validates s. Rule failures come back as *FieldErrors.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := &FieldErrors{cause: verrs}
	for _, e := range verrs {
		fe.Fields = append(fe.Fields, FieldError{Field: e.StructNamespace(), Detail: e.Translate(v.trans)})
	}
	return fe
}

// Var checks a single value, e.g. prompt input, reporting it under name.
func (v *Validator) Var(name string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	detail, terr := v.trans.T(verrs[0].Tag(), name, fmt.Sprint(value))
	if terr != nil || detail == "" {
		detail = verrs[0].Translate(v.trans)
	}
	return &FieldError{Field: name, Detail: detail}
}
