package checkout

import (
	"testing"

	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
)

func TestIsValidIrishPhone(t *testing.T) {
	valid := []string{
		"0851234567",
		"085 123 4567",
		"085-123-4567",
		"+353851234567",
		"012345678",
		"+35312345678",
	}
	for _, phone := range valid {
		if !IsValidIrishPhone(phone) {
			t.Errorf("expected %q to be valid", phone)
		}
	}

	invalid := []string{
		"",
		"12345",
		"0801234567",
		"+44851234567",
		"abc",
	}
	for _, phone := range invalid {
		if IsValidIrishPhone(phone) {
			t.Errorf("expected %q to be invalid", phone)
		}
	}
}

func TestValidateContactTrimsAndNormalizes(t *testing.T) {
	contact, err := ValidateContact(ContactInput{
		Name:  "  Maria Byrne  ",
		Phone: " 085 123 4567 ",
		Email: " maria@example.com ",
		Notes: " no onions ",
	}, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if contact.Name != "Maria Byrne" {
		t.Fatalf("name not trimmed: %q", contact.Name)
	}
	if contact.Email != "maria@example.com" {
		t.Fatalf("email not trimmed: %q", contact.Email)
	}
	if contact.Notes != "no onions" {
		t.Fatalf("notes not trimmed: %q", contact.Notes)
	}
}

func TestValidateContactFieldErrors(t *testing.T) {
	_, err := ValidateContact(ContactInput{Name: "M", Phone: "12345", Email: "nope"}, false)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	fields, ok := appErr.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details map, got %T", appErr.Details())
	}
	for _, field := range []string{"name", "phone", "email"} {
		if fields[field] == "" {
			t.Errorf("expected inline error for %q", field)
		}
	}
}

func TestValidateContactEmailOptionalVsRequired(t *testing.T) {
	base := ContactInput{Name: "Maria", Phone: "0851234567"}

	if _, err := ValidateContact(base, false); err != nil {
		t.Fatalf("email should be optional on the pickup path: %v", err)
	}

	_, err := ValidateContact(base, true)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected missing email to fail on the card path, got %v", err)
	}
}
