// Package dto provides data transfer objects for the delegated action endpoints.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	customValidation "github.com/allisson/secretbroker/internal/validation"
)

// SignRequest asks the broker to sign Data with the private key a token carries.
type SignRequest struct {
	Token     string `json:"token"`
	Data      string `json:"data"`
	Algorithm string `json:"algorithm"`
	Subject   string `json:"subject"`
}

// Validate checks if the sign request is valid.
func (r *SignRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Data,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.Algorithm,
			customValidation.NoWhitespace,
			validation.Length(0, 32),
		),
		validation.Field(&r.Subject,
			customValidation.NoWhitespace,
			validation.Length(0, 255),
		),
	)
}

// ToDomain decodes the request data. Call Validate first.
func (r *SignRequest) ToDomain() (*actionDomain.SignRequest, error) {
	data, err := base64.StdEncoding.Strict().DecodeString(r.Data)
	if err != nil {
		return nil, actionDomain.ErrInvalidRequest
	}
	return &actionDomain.SignRequest{Data: data, Algorithm: r.Algorithm}, nil
}
