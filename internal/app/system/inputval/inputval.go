// internal/app/system/inputval/inputval.go
package inputval

import (
	"errors"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/microcosm-cc/bluemonday"
)

// MaxOrganizationNameBytes keeps "<db>.org_<name>" well under MongoDB's
// namespace limit.
const MaxOrganizationNameBytes = 100

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 1

var (
	ErrOrganizationNameRequired = errors.New("organization_name is required")
	ErrOrganizationNameTooLong  = errors.New("organization_name is too long")
	ErrOrganizationNameChars    = errors.New("organization_name contains characters that cannot be used")
	ErrEmailInvalid             = errors.New("email is not a valid address")
	ErrPasswordRequired         = errors.New("password is required")
)

var plainText = bluemonday.StrictPolicy()

// OrganizationName trims and checks a proposed organization name. The
// result is used verbatim in the partition name, so anything MongoDB
// refuses in a collection name is rejected here, as is markup.
func OrganizationName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		return "", ErrOrganizationNameRequired
	case len(name) > MaxOrganizationNameBytes:
		return "", ErrOrganizationNameTooLong
	case !utf8.ValidString(name), strings.ContainsAny(name, "$\x00"):
		return "", ErrOrganizationNameChars
	case html.UnescapeString(plainText.Sanitize(name)) != name:
		return "", ErrOrganizationNameChars
	}
	return name, nil
}

// Email normalizes and validates an admin email.
func Email(raw string) (string, error) {
	email := NormalizeEmail(raw)
	if !IsValidEmail(email) {
		return "", ErrEmailInvalid
	}
	return email, nil
}

// NormalizeEmail folds an email (trimmed, lowercased, diacritics
// stripped) so lookups and rate-limit keys are stable.
func NormalizeEmail(raw string) string {
	return text.Fold(strings.TrimSpace(raw))
}

// Password checks a new password. It is never trimmed.
func Password(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordRequired
	}
	return nil
}

// IsValidEmail layers stricter rules over validate.SimpleEmailValid:
// exactly one @, no whitespace or display-name characters, and no empty
// dot-separated label on either side.
func IsValidEmail(email string) bool {
	if !validate.SimpleEmailValid(email) || strings.TrimSpace(email) != email {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n<>\"(),;:[]\\") {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	return validDotted(local) && validDotted(domain)
}

// validDotted reports whether s is non-empty and has no empty
// dot-separated label (no leading, trailing or doubled dots).
func validDotted(s string) bool {
	if s == "" {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" {
			return false
		}
	}
	return true
}
