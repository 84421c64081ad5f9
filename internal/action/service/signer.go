package service

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha256" // registers SHA-224 and SHA-256
	_ "crypto/sha512" // registers SHA-384 and SHA-512
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"io"
	"log/slog"

	"github.com/cloudflare/circl/sign/ed448"
	"golang.org/x/crypto/ssh"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	"github.com/allisson/secretbroker/internal/errors"
)

const (
	keyTypeEd25519 = "ed25519"
	keyTypeEd448   = "ed448"
)

var oidEd448 = asn1.ObjectIdentifier{1, 3, 101, 113}

// Signer signs data with a PEM private key held in a secret.
//
// Supported encodings are PKCS#8 ("PRIVATE KEY"), PKCS#1 ("RSA PRIVATE KEY"),
// SEC 1 ("EC PRIVATE KEY") and OpenSSH ("OPENSSH PRIVATE KEY"). Ed25519 and
// Ed448 keys sign the raw data and report their key type as the label; RSA
// (PKCS#1 v1.5) and ECDSA keys hash first with the requested digest, sha256 by
// default.
type Signer struct {
	random io.Reader
	logger *slog.Logger
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithSignerLogger sets the logger for signing events.
func WithSignerLogger(logger *slog.Logger) SignerOption {
	return func(s *Signer) {
		s.logger = logger
	}
}

// NewSigner creates a Signer that draws randomness from crypto/rand.
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{
		random: rand.Reader,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign parses the private key in secret and signs req.Data with it.
func (s *Signer) Sign(secret *cryptoDomain.Secret, req *actionDomain.SignRequest) (*actionDomain.SignResult, error) {
	if req == nil {
		return nil, actionDomain.ErrInvalidRequest
	}

	key, keyType, err := parsePrivateKey(secret.Bytes())
	if err != nil {
		return nil, err
	}

	alg, err := ResolveAlgorithm(key, req.Algorithm)
	if err != nil {
		return nil, err
	}

	var signature []byte
	switch a := alg.(type) {
	case actionDomain.Implicit:
		signature, err = key.Sign(s.random, req.Data, implicitOpts(key))
	case actionDomain.Explicit:
		h := a.Hash.New()
		h.Write(req.Data)
		signature, err = key.Sign(s.random, h.Sum(nil), a.Hash)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign data")
	}

	s.logger.Debug("data signed", slog.String("key_type", keyType), slog.String("algorithm", alg.Label()))

	return &actionDomain.SignResult{
		Signature: base64.StdEncoding.EncodeToString(signature),
		Algorithm: alg.Label(),
	}, nil
}

// ResolveAlgorithm decides how key signs. Ed25519 and Ed448 keys always resolve
// to the implicit algorithm named after the key type and ignore override. RSA
// and ECDSA keys resolve to the override digest, or sha256 when it is empty.
func ResolveAlgorithm(key crypto.Signer, override string) (actionDomain.SigningAlgorithm, error) {
	switch key.(type) {
	case ed25519.PrivateKey, *ed25519.PrivateKey:
		return actionDomain.Implicit{KeyType: keyTypeEd25519}, nil
	case ed448.PrivateKey:
		return actionDomain.Implicit{KeyType: keyTypeEd448}, nil
	case *rsa.PrivateKey, *ecdsa.PrivateKey:
		return actionDomain.ParseDigest(override)
	default:
		return nil, actionDomain.ErrUnsupportedKeyType
	}
}

// parsePrivateKey decodes the first PEM block of data into a signer.
func parsePrivateKey(data []byte) (crypto.Signer, string, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, "", actionDomain.ErrInvalidPrivateKey
	}
	defer cryptoDomain.Zero(block.Bytes)

	var (
		raw any
		err error
	)
	switch block.Type {
	case "PRIVATE KEY":
		if key, ok, err := parseEd448PKCS8(block.Bytes); ok {
			if err != nil {
				return nil, "", err
			}
			return key, keyTypeEd448, nil
		}
		raw, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		raw, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		raw, err = x509.ParseECPrivateKey(block.Bytes)
	case "OPENSSH PRIVATE KEY":
		raw, err = ssh.ParseRawPrivateKey(data)
	default:
		return nil, "", actionDomain.ErrInvalidPrivateKey
	}
	if err != nil {
		return nil, "", actionDomain.ErrInvalidPrivateKey
	}

	switch k := raw.(type) {
	case ed25519.PrivateKey:
		return k, keyTypeEd25519, nil
	case *ed25519.PrivateKey:
		return *k, keyTypeEd25519, nil
	case *rsa.PrivateKey:
		return k, "rsa", nil
	case *ecdsa.PrivateKey:
		return k, "ecdsa", nil
	default:
		return nil, "", actionDomain.ErrUnsupportedKeyType
	}
}

// implicitOpts returns the signer options for a key whose scheme hashes
// internally. Ed448 takes its own options type to select pure Ed448 with an
// empty context.
func implicitOpts(key crypto.Signer) crypto.SignerOpts {
	if _, ok := key.(ed448.PrivateKey); ok {
		return ed448.SignerOptions{Hash: crypto.Hash(0), Scheme: ed448.ED448}
	}
	return crypto.Hash(0)
}

// parseEd448PKCS8 decodes an RFC 8410 Ed448 PKCS#8 key, which x509 does not
// support. ok is false when der is not an Ed448 key at all.
func parseEd448PKCS8(der []byte) (key ed448.PrivateKey, ok bool, err error) {
	var info struct {
		Version    int
		Algorithm  pkix.AlgorithmIdentifier
		PrivateKey []byte
	}
	if _, err := asn1.Unmarshal(der, &info); err != nil || !info.Algorithm.Algorithm.Equal(oidEd448) {
		return nil, false, nil
	}

	var seed []byte
	rest, err := asn1.Unmarshal(info.PrivateKey, &seed)
	if err != nil || len(rest) != 0 || len(seed) != ed448.SeedSize {
		return nil, true, actionDomain.ErrInvalidPrivateKey
	}
	defer cryptoDomain.Zero(seed)

	return ed448.NewKeyFromSeed(seed), true, nil
}
