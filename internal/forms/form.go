package forms

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Mrwire/geniusad-sub002/internal/validation"
)

var ErrInvalid = errors.New("form has errors")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusInvalid Status = "invalid"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// SubmitFunc receives the validated values. Returning an error keeps the entered values.
type SubmitFunc func(ctx context.Context, values map[string]string) error

// Form is the state of one form: current values, per-field errors and the status message.
type Form struct {
	def *Definition
	val *validation.Validator

	Values  map[string]string `json:"values"`
	Errors  map[string]string `json:"errors"`
	Status  Status            `json:"status"`
	Message string            `json:"message,omitempty"`
}

func New(def Definition, val *validation.Validator) *Form {
	f := &Form{def: &def, val: val}
	f.Reset()
	return f
}

func (f *Form) Definition() Definition {
	return *f.def
}

// Reset restores every field to its initial empty value and clears errors and status.
func (f *Form) Reset() {
	f.Values = make(map[string]string, len(f.def.Fields))
	for _, field := range f.def.Fields {
		f.Values[field.ID] = ""
	}
	f.Errors = map[string]string{}
	f.Status = StatusIdle
	f.Message = ""
}

// SetValue stores value for a known field and clears that field's error only.
func (f *Form) SetValue(id, value string) {
	if _, ok := f.def.Field(id); !ok {
		return
	}
	f.Values[id] = value
	delete(f.Errors, id)
}

// SetValues applies SetValue for every known key in values; unknown keys are dropped.
func (f *Form) SetValues(values map[string]string) {
	for id, v := range values {
		f.SetValue(id, v)
	}
}

// Validate checks every field and replaces the error map. It reports whether the form is valid.
func (f *Form) Validate() bool {
	errs := make(map[string]string)
	for _, field := range f.def.Fields {
		if msg := f.checkField(field, f.Values[field.ID]); msg != "" {
			errs[field.ID] = msg
		}
	}
	f.Errors = errs
	return len(errs) == 0
}

// Submit validates the form and, when valid, hands the values to handler. On success the form
// is reset and shows the success message; on failure the values stay and the error message is set.
func (f *Form) Submit(ctx context.Context, handler SubmitFunc) error {
	f.Message = ""
	if !f.Validate() {
		f.Status = StatusInvalid
		return ErrInvalid
	}

	values := make(map[string]string, len(f.Values))
	for k, v := range f.Values {
		values[k] = strings.TrimSpace(v)
	}
	if err := handler(ctx, values); err != nil {
		f.Status = StatusError
		f.Message = f.def.ErrorMessage
		if f.Message == "" {
			f.Message = defaultErrorMessage
		}
		return err
	}

	f.Reset()
	f.Status = StatusSuccess
	f.Message = f.def.SuccessMessage
	if f.Message == "" {
		f.Message = defaultSuccessMessage
	}
	return nil
}

func (f *Form) checkField(field Field, raw string) string {
	if field.Type == TypeCheckbox {
		if field.Required && !Checked(raw) {
			return field.Label + " is required"
		}
		return ""
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		if field.Required {
			return field.Label + " is required"
		}
		return ""
	}

	if re := field.pattern(); re != nil && !re.MatchString(value) {
		if field.PatternMessage != "" {
			return field.PatternMessage
		}
		return field.Label + " is invalid"
	}
	n := utf8.RuneCountInString(value)
	if field.MinLength > 0 && n < field.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", field.Label, field.MinLength)
	}
	if field.MaxLength > 0 && n > field.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", field.Label, field.MaxLength)
	}
	if field.Type == TypeEmail && f.val != nil && f.val.Var(value, "email") != nil {
		return field.Label + " is invalid"
	}
	if field.Type == TypeSelect && len(field.Options) > 0 && !hasOption(field.Options, value) {
		return field.Label + " is invalid"
	}
	return ""
}

func (f Field) pattern() *regexp.Regexp {
	if f.re != nil || f.Pattern == "" {
		return f.re
	}
	re, err := regexp.Compile(f.Pattern)
	if err != nil {
		return nil
	}
	return re
}

// Checked reports whether a checkbox value is ticked.
func Checked(v string) bool {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "on") {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func hasOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// StringValues flattens a decoded JSON object into form values. Booleans become "true"/"false"
// and numbers keep their text form; nested values are ignored.
func StringValues(raw map[string]interface{}) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case bool:
			out[k] = strconv.FormatBool(t)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return out
}
