package catalogsync

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "kitref"
	keyringTokenKey = "catalog_pat"
)

// CredentialManager stores the catalog access token in the OS keyring.
// Tokens never touch the config file or the log output.
type CredentialManager struct {
	service string
}

// NewCredentialManager returns a manager bound to the default keyring
// service entry.
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{service: keyringService}
}

// StoreToken validates and saves a personal access token.
func (cm *CredentialManager) StoreToken(token string) error {
	token = strings.TrimSpace(token)
	if err := validateTokenFormat(token); err != nil {
		return err
	}
	if err := keyring.Set(cm.service, keyringTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in system keyring: %w", err)
	}
	return nil
}

// GetToken retrieves the stored token.
func (cm *CredentialManager) GetToken() (string, error) {
	token, err := keyring.Get(cm.service, keyringTokenKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("no catalog token stored")
		}
		return "", fmt.Errorf("failed to read token from system keyring: %w", err)
	}
	return token, nil
}

// DeleteToken removes the stored token. Deleting a token that does not
// exist is not an error.
func (cm *CredentialManager) DeleteToken() error {
	err := keyring.Delete(cm.service, keyringTokenKey)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from system keyring: %w", err)
	}
	return nil
}

// HasToken reports whether a token is currently stored.
func (cm *CredentialManager) HasToken() bool {
	_, err := keyring.Get(cm.service, keyringTokenKey)
	return err == nil
}

// validateTokenFormat accepts GitHub PAT shapes. Both the classic and
// fine-grained prefixes are allowed.
func validateTokenFormat(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if !strings.HasPrefix(token, "ghp_") && !strings.HasPrefix(token, "github_pat_") {
		return fmt.Errorf("token must start with ghp_ or github_pat_")
	}
	if len(token) < 20 {
		return fmt.Errorf("token is too short to be valid")
	}
	if strings.ContainsAny(token, " \t\n\r") {
		return fmt.Errorf("token contains whitespace")
	}
	return nil
}
