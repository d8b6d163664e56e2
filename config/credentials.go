package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CredentialStore manages API credentials stored in a plain-text TOML file
type CredentialStore struct {
	credentials map[string]string // providerID → API key
}

// NewCredentialStore creates a new credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		credentials: make(map[string]string),
	}
}

// Load loads credentials from disk
func (c *CredentialStore) Load(dataDir string) error {
	creds, err := loadCredentialsFile(dataDir)
	if err != nil {
		return err
	}
	c.credentials = creds
	return nil
}

// Save saves credentials to disk
func (c *CredentialStore) Save(dataDir string) error {
	return saveCredentialsFile(dataDir, c.credentials)
}

// Get retrieves a credential for a provider
func (c *CredentialStore) Get(providerID string) string {
	return c.credentials[providerID]
}

// Set stores a credential for a provider
func (c *CredentialStore) Set(providerID string, apiKey string) {
	c.credentials[providerID] = apiKey
}

// Delete removes a credential for a provider
func (c *CredentialStore) Delete(providerID string) {
	delete(c.credentials, providerID)
}

// credentialsPath returns the path to the credentials file
func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

// loadCredentialsFile loads credentials from the TOML file
func loadCredentialsFile(dataDir string) (map[string]string, error) {
	path := credentialsPath(dataDir)

	// If file doesn't exist, return empty map (no error)
	if !FileExists(path) {
		return make(map[string]string), nil
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if cf.Credentials == nil {
		cf.Credentials = make(map[string]string)
	}

	return cf.Credentials, nil
}

// saveCredentialsFile saves credentials with 0600 permissions
func saveCredentialsFile(dataDir string, creds map[string]string) error {
	path := credentialsPath(dataDir)

	cf := credentialsFile{
		Credentials: creds,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	return nil
}
