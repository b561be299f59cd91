// internal/app/system/inputval/inputval.go
//
// Package inputval validates the public forms (login, contact, support)
// with go-playground/validator and turns failures into per-field messages.
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Contact categories accepted by the support form.
var ContactCategories = []string{"general", "billing", "technical", "account"}

// LoginInput is the posted login form.
type LoginInput struct {
	Email    string `form:"email" validate:"required,portal_email,max=254"`
	Password string `form:"password" validate:"required,max=256"`
}

// ContactInput is the posted contact or support form.
type ContactInput struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,portal_email,max=254"`
	Subject  string `form:"subject" validate:"max=200"`
	Category string `form:"category" validate:"omitempty,oneof=general billing technical account"`
	Message  string `form:"message" validate:"required,min=10,max=5000"`
}

// Errors maps a form field name to a human-readable message.
type Errors map[string]string

// Has reports whether field failed.
func (e Errors) Has(field string) bool { _, ok := e[field]; return ok }

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("portal_email", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks a form struct. It returns nil when the input is valid.
func Validate(in any) Errors {
	err := instance().Struct(in)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Errors{"_": err.Error()}
	}

	out := Errors{}
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	label := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "portal_email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("Choose a valid %s.", strings.ToLower(label))
	}
	return label + " is invalid."
}

// IsValidEmail reports whether s is a bare address (no display name) with
// a well-formed local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return !strings.ContainsAny(s, " \t")
}
