// Package validation provides custom validation rules for the application.
package validation

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/orgvault/internal/errors"
)

var (
	// secretKeyRegex matches environment-variable style identifiers such as
	// DB_PASS or stripe.api-key.
	secretKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretKey validates the human identifier of a secret.
var SecretKey = validation.NewStringRuleWithError(
	func(s string) bool {
		return secretKeyRegex.MatchString(s)
	},
	validation.NewError(
		"validation_secret_key",
		"must start with a letter or underscore and contain only letters, digits, '_', '.' or '-'",
	),
)

// IPOrCIDR validates a single IP address or CIDR prefix.
var IPOrCIDR = validation.NewStringRuleWithError(
	func(s string) bool {
		if _, err := netip.ParseAddr(s); err == nil {
			return true
		}
		_, err := netip.ParsePrefix(s)
		return err == nil
	},
	validation.NewError("validation_ip_or_cidr", "must be a valid IP address or CIDR"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NotNilUUID validates that a uuid.UUID is set. Required cannot detect the zero
// value of an array type.
var NotNilUUID = validation.By(func(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_uuid_required", "cannot be blank")
	}
	return nil
})
