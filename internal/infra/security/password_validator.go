package security

import (
	"fmt"
	"unicode"
)

const (
	// PasswordMinLength and PasswordMaxLength bound accepted password sizes.
	PasswordMinLength = 8
	PasswordMaxLength = 64
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules in order.
// The first violation is returned; later rules are not evaluated.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// DefaultPasswordValidator returns the validator used for signup.
// Rule order is part of the contract: clients rely on the first
// reported violation being deterministic.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		LengthRule(PasswordMinLength, PasswordMaxLength),
		RequireLowercaseRule(),
		RequireUppercaseRule(),
		RequireDigitRule(),
		RequireSpecialRule(),
		NoWhitespaceRule(),
	)
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// LengthRule ensures the password length falls within [min, max] runes.
func LengthRule(min, max int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		n := len([]rune(password))
		if n < min || n > max {
			return &PasswordValidationError{
				Code:    "length",
				Message: fmt.Sprintf("password must be between %d and %d characters long", min, max),
			}
		}
		return nil
	})
}

// RequireLowercaseRule ensures the password contains at least one lowercase letter.
func RequireLowercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsLower(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "lowercase",
			Message: "password must include at least one lowercase letter",
		}
	})
}

// RequireUppercaseRule ensures the password contains at least one uppercase letter.
func RequireUppercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsUpper(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "uppercase",
			Message: "password must include at least one uppercase letter",
		}
	})
}

// RequireDigitRule ensures the password contains at least one digit.
func RequireDigitRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsDigit(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "digit",
			Message: "password must include at least one digit",
		}
	})
}

// RequireSpecialRule ensures the password contains at least one character
// that is neither a letter, a digit, nor whitespace.
func RequireSpecialRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "special",
			Message: "password must include at least one special character",
		}
	})
}

// NoWhitespaceRule rejects passwords containing any whitespace character.
func NoWhitespaceRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsSpace(r) {
				return &PasswordValidationError{
					Code:    "whitespace",
					Message: "password must not contain whitespace",
				}
			}
		}
		return nil
	})
}
