package git

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/IQDevs/blog/internal/config"
)

// NewAuth creates a go-git transport.AuthMethod from the configured auth.
// A nil or none config returns nil (unauthenticated).
func NewAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	if authCfg.IsZero() {
		return nil, nil
	}

	switch authCfg.Type {
	case config.AuthTypeToken:
		if authCfg.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		// Git hosting services accept "token" as the username for token auth.
		return &http.BasicAuth{Username: "token", Password: authCfg.Token}, nil

	case config.AuthTypeBasic:
		if authCfg.Username == "" || authCfg.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{Username: authCfg.Username, Password: authCfg.Password}, nil

	case config.AuthTypeSSH:
		keyPath := authCfg.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
		}
		return keys, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type %q", authCfg.Type)
	}
}
