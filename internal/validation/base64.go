package validation

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
)

// Base64 validates standard base64 text. Empty strings pass; pair it with
// Required when a value is mandatory.
var Base64 = Base64MinBytes(0)

// Base64MinBytes validates standard base64 text that decodes to at least n bytes.
func Base64MinBytes(n int) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		if len(decoded) < n {
			return validation.NewError(
				"validation_base64_length",
				fmt.Sprintf("must decode to at least %d bytes", n),
			)
		}
		return nil
	})
}
