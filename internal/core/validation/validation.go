// Package validation builds the go-playground validator shared by the service
// and transport layers and turns its failures into domain field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

const DefaultPhoneRegion = "US"

// PasswordMaxBytes is the longest input bcrypt accepts.
const PasswordMaxBytes = 72

// fieldRules are the value constraints applied to each user field whenever it
// is written. The password cap counts bytes, not characters.
var fieldRules = map[domain.UserField]string{
	domain.FieldEmail:     "required,email,max=255",
	domain.FieldPassword:  "required,min=6,maxbytes=72",
	domain.FieldFirstName: "required,max=100",
	domain.FieldLastName:  "required,max=100",
	domain.FieldContactNo: "required,max=32,phone",
	domain.FieldAddress:   "required,max=255",
	domain.FieldDOB:       "required,datetime=2006-01-02",
	domain.FieldGender:    "required,max=32",
	domain.FieldRoleID:    "required,max=64",
}

// Validator wraps validator.Validate with the user field rules.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator whose phone tag parses numbers relative to
// phoneRegion (an ISO 3166 region code).
func New(phoneRegion string) *Validator {
	if phoneRegion == "" {
		phoneRegion = DefaultPhoneRegion
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, err := phonenumbers.Parse(fl.Field().String(), phoneRegion)
		return err == nil
	})

	return &Validator{v: v}
}

// Field checks value against the rules of field. It returns nil when the
// value is acceptable or the field has no rules.
func (val *Validator) Field(field domain.UserField, value string) *domain.FieldError {
	rules, ok := fieldRules[field]
	if !ok {
		return nil
	}
	if err := val.v.Var(value, rules); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return &domain.FieldError{Field: string(field), Message: Message(ve[0])}
		}
		return &domain.FieldError{Field: string(field), Message: "is invalid"}
	}
	return nil
}

// Struct validates a tagged struct and returns one field error per failure.
func (val *Validator) Struct(s any) []domain.FieldError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []domain.FieldError{{Field: "request", Message: "is invalid"}}
	}
	out := make([]domain.FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, domain.FieldError{Field: fe.Field(), Message: Message(fe)})
	}
	return out
}

// Message converts a single validator failure into a human-readable phrase
// that reads after the field name.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "datetime":
		return fmt.Sprintf("must be a date formatted as %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
