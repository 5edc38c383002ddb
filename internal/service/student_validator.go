package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"studentrecords/internal/model"
)

const (
	maxNameLength  = 255
	maxEmailLength = 255
	maxRALength    = 20
	cpfLength      = 11
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cpfPattern   = regexp.MustCompile(`^[0-9]{11}$`)
)

// ValidationResult is the outcome of validating a student.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// StudentValidator checks student business rules. It holds no state.
type StudentValidator struct{}

// NewStudentValidator creates a new student validator.
func NewStudentValidator() *StudentValidator {
	return &StudentValidator{}
}

// Validate checks every field group and collects all failures in name, email,
// ra, cpf order.
func (v *StudentValidator) Validate(s *model.Student) ValidationResult {
	var errs []string

	switch {
	case strings.TrimSpace(s.Name) == "":
		errs = append(errs, "Name is required")
	case utf8.RuneCountInString(s.Name) > maxNameLength:
		errs = append(errs, "Name must be less than 255 characters")
	}

	switch {
	case s.Email == "":
		errs = append(errs, "Email is required")
	case !v.ValidateEmail(s.Email):
		errs = append(errs, "Email is invalid")
	case utf8.RuneCountInString(s.Email) > maxEmailLength:
		errs = append(errs, "Email must be less than 255 characters")
	}

	switch {
	case strings.TrimSpace(s.RA) == "":
		errs = append(errs, "RA is required")
	case utf8.RuneCountInString(s.RA) > maxRALength:
		errs = append(errs, "RA must be less than 20 characters")
	}

	switch {
	case s.CPF == "":
		errs = append(errs, "CPF is required")
	case !v.ValidateCPF(s.CPF):
		errs = append(errs, "CPF is invalid")
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateEmail reports whether email has the local@domain.tld shape.
func (v *StudentValidator) ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateCPF reports whether cpf is exactly 11 ASCII digits that are not all
// the same digit. Check digits are not verified.
func (v *StudentValidator) ValidateCPF(cpf string) bool {
	if len(cpf) != cpfLength || !cpfPattern.MatchString(cpf) {
		return false
	}
	return strings.Count(cpf, cpf[:1]) != cpfLength
}
