package domain

import (
	"crypto"
	"strings"
)

// SignRequest carries the data to sign and an optional digest override.
// The override is ignored for key types whose algorithm is fixed by the key.
type SignRequest struct {
	Data      []byte
	Algorithm string
}

// SignResult holds a base64 (standard encoding) signature and the label of the
// algorithm that produced it.
type SignResult struct {
	Signature string `json:"signature"`
	Algorithm string `json:"algorithm"`
}

// SigningAlgorithm is the resolved way a key signs. It is either Implicit or
// Explicit; no other implementations exist outside this package.
type SigningAlgorithm interface {
	// Label is the algorithm name reported to callers.
	Label() string
	signingAlgorithm()
}

// Implicit is used by Edwards-curve keys, whose signature scheme fixes its own
// hashing. The data is signed as is and the label is the key type.
type Implicit struct {
	KeyType string
}

// Label returns the key type, e.g. "ed25519".
func (i Implicit) Label() string { return i.KeyType }

func (Implicit) signingAlgorithm() {}

// Explicit is used by RSA and ECDSA keys: the data is hashed with Hash first.
type Explicit struct {
	Hash crypto.Hash
	Name string
}

// Label returns the digest name, e.g. "sha256".
func (e Explicit) Label() string { return e.Name }

func (Explicit) signingAlgorithm() {}

// DefaultDigest is the digest used when no override is given.
const DefaultDigest = "sha256"

var digests = map[string]crypto.Hash{
	"sha224": crypto.SHA224,
	"sha256": crypto.SHA256,
	"sha384": crypto.SHA384,
	"sha512": crypto.SHA512,
}

// ParseDigest resolves a digest name such as "sha384" or "SHA-384". An empty
// name resolves to DefaultDigest.
func ParseDigest(name string) (Explicit, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	if normalized == "" {
		normalized = DefaultDigest
	}
	hash, ok := digests[normalized]
	if !ok {
		return Explicit{}, ErrUnsupportedDigest
	}
	return Explicit{Hash: hash, Name: normalized}, nil
}
