package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	apperrors "github.com/allisson/secretbroker/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperOpener opens the keeper that seals secrets at rest in a storage backend.
type KeeperOpener interface {
	// OpenKeeper opens a keeper for a gocloud.dev/secrets URL.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.Keeper, error)
}

type keeperOpener struct{}

// NewKeeperOpener creates a KeeperOpener backed by gocloud.dev/secrets.
func NewKeeperOpener() KeeperOpener {
	return &keeperOpener{}
}

// OpenKeeper opens a *secrets.Keeper for keyURI.
func (k *keeperOpener) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.Keeper, error) {
	if keyURI == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "keeper uri is required")
	}
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper: %w", err)
	}
	return keeper, nil
}

// GenerateLocalKeeperURI returns a base64key:// URL holding 32 fresh random
// bytes, suitable for the local keeper driver.
func GenerateLocalKeeperURI() (string, error) {
	key := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(key)

	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate keeper key: %w", err)
	}
	return "base64key://" + base64.URLEncoding.EncodeToString(key), nil
}
