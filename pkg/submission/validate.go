package submission

import (
	"regexp"
	"strings"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// MinPhoneDigits is the minimum number of digits in a phone number.
const MinPhoneDigits = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateContact checks the required contact fields. It returns nil when the
// contact is valid.
func ValidateContact(c domain.Contact) []domain.FieldError {
	var errs []domain.FieldError

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "name is required"})
	}

	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		errs = append(errs, domain.FieldError{Field: "email", Message: "email is required"})
	case !emailPattern.MatchString(email):
		errs = append(errs, domain.FieldError{Field: "email", Message: "email must look like name@example.com"})
	}

	phone := strings.TrimSpace(c.Phone)
	switch {
	case phone == "":
		errs = append(errs, domain.FieldError{Field: "phone", Message: "phone is required"})
	case !validPhone(phone):
		errs = append(errs, domain.FieldError{Field: "phone", Message: "phone must contain at least 10 digits"})
	}
	return errs
}

// validPhone counts digits only; separators, a leading + and extensions
// such as "x89" are all ignored.
func validPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= MinPhoneDigits
}
