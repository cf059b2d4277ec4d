package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordStrength_Valid(t *testing.T) {
	result := CheckPasswordStrength("Abcdef1!")
	assert.True(t, result.Valid)
	assert.Empty(t, result.FailedRules)
}

func TestCheckPasswordStrength_OnlyLowercase(t *testing.T) {
	result := CheckPasswordStrength("abcdefgh")
	assert.False(t, result.Valid)
	assert.ElementsMatch(t, []string{RuleUppercase, RuleDigit, RuleSpecial}, result.FailedRules)
}

func TestCheckPasswordStrength_TooShort(t *testing.T) {
	result := CheckPasswordStrength("Ab1!")
	assert.False(t, result.Valid)
	assert.Equal(t, []string{RuleMinLength}, result.FailedRules)
}

func TestCheckPasswordStrength_NoLowercase(t *testing.T) {
	result := CheckPasswordStrength("ABCDEFG1!")
	assert.False(t, result.Valid)
	assert.Equal(t, []string{RuleLowercase}, result.FailedRules)
}

func TestCheckPasswordStrength_SpecialOutsideSet(t *testing.T) {
	// '^' is not in the accepted special set.
	result := CheckPasswordStrength("Abcdefg1^")
	assert.False(t, result.Valid)
	assert.Equal(t, []string{RuleSpecial}, result.FailedRules)
}

func TestCheckPasswordStrength_NoTrimming(t *testing.T) {
	// Whitespace is not stripped; the padded password still needs every class.
	result := CheckPasswordStrength("        ")
	assert.False(t, result.Valid)
	assert.ElementsMatch(t, []string{RuleLowercase, RuleUppercase, RuleDigit, RuleSpecial}, result.FailedRules)
}

func TestPasswordStrengthMessage(t *testing.T) {
	result := CheckPasswordStrength("weak")
	assert.Equal(t,
		"Password must be at least 8 characters and contain at least one uppercase letter, one lowercase letter, one number, and one special character (@$!%*?&#).",
		result.Message("Password"))
}
