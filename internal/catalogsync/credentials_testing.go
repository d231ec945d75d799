package catalogsync

import (
	"fmt"
	"testing"

	"github.com/zalando/go-keyring"
)

// TestCredentialManager wraps CredentialManager with a unique per-test
// keyring service so tests never touch production credentials and can
// run in parallel. Cleanup is registered automatically.
type TestCredentialManager struct {
	*CredentialManager
	testService string
	t           *testing.T
}

// NewTestCredentialManager creates an isolated credential manager for
// testing, registering cleanup via t.Cleanup.
func NewTestCredentialManager(t *testing.T) *TestCredentialManager {
	t.Helper()

	testService := fmt.Sprintf("kitref-test-%s", t.Name())

	cm := &TestCredentialManager{
		CredentialManager: &CredentialManager{service: testService},
		testService:       testService,
		t:                 t,
	}

	t.Cleanup(func() {
		_ = keyring.Delete(cm.testService, keyringTokenKey)
	})

	return cm
}

// SetupTestKeyring skips the test when no OS keyring is available, as
// in most CI environments. Returns a cleanup function for the probe key.
func SetupTestKeyring(t *testing.T) func() {
	t.Helper()

	testService := fmt.Sprintf("kitref-keyring-probe-%s", t.Name())
	if err := keyring.Set(testService, "probe", "probe"); err != nil {
		t.Skipf("Keyring not available, skipping test: %v", err)
	}

	return func() {
		_ = keyring.Delete(testService, "probe")
	}
}

// CreateTestToken generates a token matching GitHub's format that is
// not a real credential. An empty prefix defaults to "ghp_".
func CreateTestToken(prefix string) string {
	if prefix == "" {
		prefix = "ghp_"
	}
	return prefix + "1234567890abcdefghijklmnopqrstuvwxyzABCD"
}
