package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

// ErrMalformedBody is returned by Decode when the body is not a JSON object.
var ErrMalformedBody = errors.New("request body must be a JSON object")

// Decode unmarshals a JSON object into a new form of type t. A value of the
// wrong JSON type leaves its field empty and is reported by Validate along
// with every other rule the form breaks.
func Decode(t domain.FormType, data []byte) (Form, error) {
	f, ok := NewForm(t)
	if !ok {
		return nil, fmt.Errorf("decode %s: unknown form", t)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, ErrMalformedBody
	}

	mistyped := make(map[string]string)
	for key, raw := range fields {
		scratch, _ := NewForm(t)
		one, err := json.Marshal(map[string]json.RawMessage{key: raw})
		if err != nil {
			return nil, ErrMalformedBody
		}
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(one, scratch); errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = key
			}
			mistyped[field] = expectedKind(typeErr.Type)
		}
	}

	if err := json.Unmarshal(data, f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, ErrMalformedBody
		}
	}
	if len(mistyped) == 0 {
		return f, nil
	}
	return &mistypedForm{Form: f, fields: mistyped}, nil
}

func expectedKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "text"
	case reflect.Bool:
		return "true or false"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "a number"
	default:
		return "a valid value"
	}
}

// mistypedForm is a decoded form carrying the fields whose JSON type was wrong.
type mistypedForm struct {
	Form
	fields map[string]string
}

// Validate replaces the form's own message for a mistyped field with a type
// message and appends mistyped fields the form did not flag.
func (m *mistypedForm) Validate(now time.Time) error {
	var own []domain.FieldError
	if err := m.Form.Validate(now); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		own = ve.Errors
	}

	out := make([]domain.FieldError, 0, len(own)+len(m.fields))
	reported := make(map[string]bool, len(m.fields))
	for _, fe := range own {
		if want, ok := m.fields[fe.Field]; ok {
			if !reported[fe.Field] {
				out = append(out, typeError(fe.Field, want))
				reported[fe.Field] = true
			}
			continue
		}
		out = append(out, fe)
	}

	rest := make([]string, 0, len(m.fields))
	for field := range m.fields {
		if !reported[field] {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range rest {
		out = append(out, typeError(field, m.fields[field]))
	}
	return domain.NewValidationErrors(out)
}

func typeError(field, want string) domain.FieldError {
	return domain.FieldError{Field: field, Message: fmt.Sprintf("%s must be %s", field, want)}
}

// baseForm strips decoding wrappers so rule lookups see the concrete form.
func baseForm(f Form) Form {
	if m, ok := f.(*mistypedForm); ok {
		return m.Form
	}
	return f
}
