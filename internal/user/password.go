package user

import (
	"fmt"
	"strings"
)

// Password rule identifiers reported by CheckPasswordStrength.
const (
	RuleMinLength = "min_length"
	RuleLowercase = "lowercase"
	RuleUppercase = "uppercase"
	RuleDigit     = "digit"
	RuleSpecial   = "special"
)

const passwordSpecialChars = "@$!%*?&#"

const minPasswordLength = 8

// PasswordStrengthResult lists which rules a candidate password failed.
type PasswordStrengthResult struct {
	Valid       bool
	FailedRules []string
}

// Message renders the single user-facing failure message for the given field
// label. The message is the same whichever rules failed.
func (r PasswordStrengthResult) Message(field string) string {
	return fmt.Sprintf("%s must be at least 8 characters and contain at least one uppercase letter, one lowercase letter, one number, and one special character (%s).", field, passwordSpecialChars)
}

// CheckPasswordStrength applies all rules to the candidate as-is, with no
// trimming or normalization.
func CheckPasswordStrength(candidate string) PasswordStrengthResult {
	var failed []string

	if len(candidate) < minPasswordLength {
		failed = append(failed, RuleMinLength)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, c := range candidate {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, c):
			hasSpecial = true
		}
	}
	if !hasLower {
		failed = append(failed, RuleLowercase)
	}
	if !hasUpper {
		failed = append(failed, RuleUppercase)
	}
	if !hasDigit {
		failed = append(failed, RuleDigit)
	}
	if !hasSpecial {
		failed = append(failed, RuleSpecial)
	}

	return PasswordStrengthResult{Valid: len(failed) == 0, FailedRules: failed}
}
