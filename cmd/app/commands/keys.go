package commands

import (
	"fmt"
	"io"

	authService "github.com/allisson/secretbroker/internal/auth/service"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
)

// RunCreateKeeperKey prints a fresh local keeper URL in dotenv form.
//
// The URL embeds the key itself. It suits development and single-host
// installs; production setups point BACKEND_KEEPER_URI at a KMS instead.
func RunCreateKeeperKey(writer io.Writer) error {
	uri, err := cryptoService.GenerateLocalKeeperURI()
	if err != nil {
		return fmt.Errorf("failed to generate keeper key: %w", err)
	}

	_, err = fmt.Fprintf(writer, "BACKEND_PROVIDER=\"keeper\"\nBACKEND_KEEPER_URI=\"%s\"\n", uri)
	return err
}

// RunCreateAPIToken generates an API bearer token and prints it with the
// Argon2id hash to put in API_TOKEN_HASH. The plain token is shown only once.
func RunCreateAPIToken(tokenService authService.APITokenService, writer io.Writer) error {
	plain, hash, err := tokenService.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate api token: %w", err)
	}

	_, err = fmt.Fprintf(writer,
		"# Give this token to API clients; it is not stored anywhere.\n"+
			"# API_TOKEN=%s\n"+
			"API_TOKEN_HASH='%s'\n",
		plain, hash,
	)
	return err
}
