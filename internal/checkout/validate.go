package checkout

import (
	"regexp"
	"strings"

	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
)

var (
	phoneStripRe = regexp.MustCompile(`[\s-]`)
	// Irish mobile: 08X XXX XXXX or +353 8X XXX XXXX
	mobileRe = regexp.MustCompile(`^(\+353|0)8[3-9]\d{7}$`)
	// Irish landline: 01 XXX XXXX or +353 1 XXX XXXX
	landlineRe = regexp.MustCompile(`^(\+353|0)[1-9]\d{6,8}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ContactInput is the shopper-entered contact block on the checkout form.
type ContactInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// IsValidIrishPhone accepts Irish mobile and landline numbers, with or
// without the international prefix. Spaces and dashes are ignored.
func IsValidIrishPhone(phone string) bool {
	cleaned := phoneStripRe.ReplaceAllString(phone, "")
	return mobileRe.MatchString(cleaned) || landlineRe.MatchString(cleaned)
}

// IsValidEmail checks the basic local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidateContact fails closed: every field must pass before submission is
// allowed. Field-level problems are returned in the error details so the
// form can surface them inline.
func ValidateContact(input ContactInput, emailRequired bool) (ContactInput, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		fields["name"] = "Name is required"
	case len([]rune(name)) < 2:
		fields["name"] = "Name must be at least 2 characters"
	}

	phone := strings.TrimSpace(input.Phone)
	switch {
	case phone == "":
		fields["phone"] = "Phone number is required"
	case !IsValidIrishPhone(phone):
		fields["phone"] = "Please enter a valid phone number"
	}

	email := strings.TrimSpace(input.Email)
	switch {
	case email == "" && emailRequired:
		fields["email"] = "Email is required"
	case email != "" && !IsValidEmail(email):
		fields["email"] = "Please enter a valid email address"
	}

	if len(fields) > 0 {
		return ContactInput{}, pkgerrors.
			New(pkgerrors.CodeValidation, "invalid contact details").
			WithDetails(fields)
	}

	return ContactInput{
		Name:  name,
		Phone: phone,
		Email: email,
		Notes: strings.TrimSpace(input.Notes),
	}, nil
}
