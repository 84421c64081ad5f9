// Package domain defines the broker token model: header, claims, policies and
// rejection errors.
package domain

import (
	"encoding/json"
	"time"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// Claims is the payload sealed inside a token.
//
// Value holds the secret and is owned by the Claims; Destroy zeroes it. Claims
// decoded from a token are only trustworthy after authenticated decryption and
// validation both succeed. ExpiresAt and IssuedAt travel with millisecond
// precision.
type Claims struct {
	ID        string
	Value     *cryptoDomain.Secret
	ExpiresAt time.Time
	IssuedAt  time.Time
	Subject   string
	Issuer    string
	Extra     map[string]string
}

// Destroy zeroes the secret value.
func (c *Claims) Destroy() {
	if c == nil {
		return
	}
	c.Value.Destroy()
}

// IsExpired reports whether the claims are expired at now (now >= exp).
func (c *Claims) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// claimsPayload is the JSON shape of Claims inside the ciphertext. The value is
// carried as bytes so decoding never produces an unzeroable string copy.
type claimsPayload struct {
	Value     []byte            `json:"val"`
	ExpiresAt int64             `json:"exp"`
	IssuedAt  int64             `json:"iat,omitempty"`
	Subject   string            `json:"sub,omitempty"`
	Issuer    string            `json:"iss,omitempty"`
	Extra     map[string]string `json:"ext,omitempty"`
}

// EncodePayload serializes everything but the token id, which lives in the header.
// The caller must zero the returned buffer.
func (c *Claims) EncodePayload() ([]byte, error) {
	p := claimsPayload{
		Value:     c.Value.Bytes(),
		ExpiresAt: c.ExpiresAt.UnixMilli(),
		Subject:   c.Subject,
		Issuer:    c.Issuer,
		Extra:     c.Extra,
	}
	if !c.IssuedAt.IsZero() {
		p.IssuedAt = c.IssuedAt.UnixMilli()
	}
	return json.Marshal(p)
}

// DecodePayload parses a payload produced by EncodePayload. The returned claims
// own a fresh copy of the value.
func DecodePayload(id string, data []byte) (*Claims, error) {
	var p claimsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	claims := &Claims{
		ID:        id,
		Value:     cryptoDomain.NewSecret(p.Value),
		ExpiresAt: time.UnixMilli(p.ExpiresAt).UTC(),
		Subject:   p.Subject,
		Issuer:    p.Issuer,
		Extra:     p.Extra,
	}
	if p.IssuedAt != 0 {
		claims.IssuedAt = time.UnixMilli(p.IssuedAt).UTC()
	}
	return claims, nil
}
