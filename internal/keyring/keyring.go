package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/tally/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry is one secret in the OS keyring, addressed by service and user
type Entry struct {
	Service string
	User    string
}

// ConnectionString is the entry holding the PostgreSQL connection string
var ConnectionString = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

// Get returns the stored secret, or ErrNotFound
func (e Entry) Get() (string, error) {
	secret, err := gokeyring.Get(e.Service, e.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores secret, replacing any previous value
func (e Entry) Set(secret string) error {
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := gokeyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret, or returns ErrNotFound if there was none
func (e Entry) Delete() error {
	err := gokeyring.Delete(e.Service, e.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable makes a best-effort probe of the OS keyring. An empty keyring
// counts as available.
func IsAvailable() bool {
	_, err := gokeyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}
