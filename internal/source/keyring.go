package source

import (
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/zalando/go-keyring"
)

// PasswordLookup returns the stored password for a keyring user
type PasswordLookup func(service, user string) (string, error)

// keyringUser is the keyring account a database password is stored under
func keyringUser(user, host string) string {
	return fmt.Sprintf("%s@%s", user, host)
}

// LookupPassword reads a password from the OS keyring. A missing entry is
// not an error and returns "".
func LookupPassword(lookup PasswordLookup, user, host string) (string, error) {
	if lookup == nil {
		lookup = keyring.Get
	}
	password, err := lookup(config.AppName, keyringUser(user, host))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// SavePassword stores a database password in the OS keyring
func SavePassword(user, host, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(config.AppName, keyringUser(user, host), password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}
