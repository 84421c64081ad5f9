package backend

import (
	"context"

	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
	"github.com/allisson/secretbroker/internal/errors"
)

// Options selects and configures a backend.
type Options struct {
	Provider  string
	KeeperURI string
	Directory string
}

// Open builds the backend named by opts.Provider.
func Open(ctx context.Context, opts Options, opener cryptoService.KeeperOpener) (Backend, error) {
	switch opts.Provider {
	case "", ProviderMemory:
		return NewMemoryBackend(), nil
	case ProviderKeeper:
		keeper, err := opener.OpenKeeper(ctx, opts.KeeperURI)
		if err != nil {
			return nil, err
		}
		backend, err := NewKeeperBackend(opts.Directory, keeper)
		if err != nil {
			_ = keeper.Close()
			return nil, err
		}
		return backend, nil
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "%q", opts.Provider)
	}
}
