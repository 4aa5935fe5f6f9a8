// Package validation wraps go-playground/validator with English messages
// keyed by the request field names clients actually send.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
)

// Validator validates request DTOs and reports translated failures.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New builds a Validator with English translations registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(v, trans)

	return &Validator{validate: v, trans: trans}
}

// Struct validates s. Failures come back as a VALIDATION_ERROR whose message
// lists every offending field, sorted by field name.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	fields := v.Translate(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, fields[k])
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
}

// Translate maps field names to human readable messages. Errors that are not
// validation failures are returned under "detail".
func (v *Validator) Translate(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(v.trans)
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}

// fieldName prefers the json tag, then the form tag, then the Go name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
