package service

import (
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// cipherFactories maps every supported token algorithm to its constructor.
var cipherFactories = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
		return NewAESGCM(key)
	},
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
		return NewChaCha20Poly1305(key)
	},
}

// AEADManagerService builds the cipher named in a token header.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns the alg cipher keyed with key. It fails with
// ErrInvalidKeySize unless key is KeySize bytes and with ErrUnsupportedAlgorithm
// for any algorithm outside the token header's enc values.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	factory, ok := cipherFactories[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	return factory(key)
}
