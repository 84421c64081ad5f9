package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// Base64 validates standard, padded base64 such as the data field of a sign
// request. Empty strings pass; combine with Required to reject them.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := base64.StdEncoding.Strict().DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be standard base64 with padding"),
)
