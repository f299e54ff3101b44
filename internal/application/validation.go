package application

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-ecommerce-auth/pkg/validation"
)

var validate = validator.New()

const (
	emailRules    = "required,email,max=255"
	passwordRules = "required,min=6,max=68"
	nameRules     = "max=150"

	// bcrypt rejects inputs longer than this many bytes; max above counts runes.
	maxPasswordBytes = 72
)

// check runs one validator rule set against a value and records the first
// failure under field.
func check(fields map[string]string, field, value, rules string) {
	err := validate.Var(value, rules)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields[field] = validation.Message(verrs[0])
		return
	}
	fields[field] = "is invalid"
}

func checkPassword(fields map[string]string, field, password string) {
	check(fields, field, password, passwordRules)
	if _, failed := fields[field]; !failed && len(password) > maxPasswordBytes {
		fields[field] = "must be at most 72 bytes long"
	}
}

func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func validateRegister(in RegisterInput) error {
	fields := map[string]string{}
	check(fields, "email", in.Email, emailRules)
	checkPassword(fields, "password", in.Password)
	check(fields, "first_name", in.FirstName, nameRules)
	check(fields, "last_name", in.LastName, nameRules)
	return invalid(fields)
}

func validatePassword(field, password string) error {
	fields := map[string]string{}
	checkPassword(fields, field, password)
	return invalid(fields)
}

func validateNames(first, last string) error {
	fields := map[string]string{}
	check(fields, "first_name", first, nameRules)
	check(fields, "last_name", last, nameRules)
	return invalid(fields)
}
