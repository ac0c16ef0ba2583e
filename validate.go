package leads

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	nameMessage  = "name must not be empty"
	emailMessage = "value is not a valid email address"
	phoneMessage = "The phone number should be in format like (ex: +5511999999999)"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ValidationError reports the first invalid field of a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic("register phone validation: " + err.Error())
	}
	return v
}

// ValidateName accepts any name that is not blank.
func ValidateName(name string) (string, error) {
	if err := validate.Var(strings.TrimSpace(name), "required"); err != nil {
		return "", &ValidationError{Field: "name", Message: nameMessage}
	}
	return name, nil
}

// ValidateEmail accepts a syntactically valid email address.
func ValidateEmail(email string) (string, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return "", &ValidationError{Field: "email", Message: emailMessage}
	}
	return email, nil
}

// ValidatePhone accepts E.164-like numbers: an optional '+', then 2 to 15
// digits not starting with 0.
func ValidatePhone(phone string) (string, error) {
	if err := validate.Var(phone, "required,phone"); err != nil {
		return "", &ValidationError{Field: "phone", Message: phoneMessage}
	}
	return phone, nil
}

// Validate checks name, email and phone in that order and returns the first
// failure as a *ValidationError.
func (nl NewLead) Validate() error {
	checks := []struct {
		value string
		check func(string) (string, error)
	}{
		{nl.Name, ValidateName},
		{nl.Email, ValidateEmail},
		{nl.Phone, ValidatePhone},
	}
	for _, c := range checks {
		if _, err := c.check(c.value); err != nil {
			return err
		}
	}
	return nil
}
