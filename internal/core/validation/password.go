package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// PasswordMinLength is the minimum number of characters of a password.
const PasswordMinLength = 12

// PasswordProblems lists every strength rule the password breaks, in a
// fixed order: length, digit, letter. A strong password yields nil.
//
// Only a digit and a letter are required; there is no special character rule.
func PasswordProblems(password string) []string {
	var problems []string
	if utf8.RuneCountInString(password) < PasswordMinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters long", PasswordMinLength))
	}

	var hasDigit, hasLetter bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	if !hasDigit {
		problems = append(problems, "password must contain at least one digit")
	}
	if !hasLetter {
		problems = append(problems, "password must contain at least one letter")
	}
	return problems
}
