package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/liberioai/dossier/internal/paths"
)

// SecretKind describes a credential the content stores can consume.
type SecretKind struct {
	ID     string // "github", "s3-access-key", "s3-secret-key"
	Name   string // Display name
	EnvVar string
	HasKey bool // Whether env var is set
}

var knownSecrets = []SecretKind{
	{ID: "github", Name: "GitHub token", EnvVar: "GITHUB_TOKEN"},
	{ID: "s3-access-key", Name: "S3 access key", EnvVar: "AWS_ACCESS_KEY_ID"},
	{ID: "s3-secret-key", Name: "S3 secret key", EnvVar: "AWS_SECRET_ACCESS_KEY"},
}

// KnownSecrets lists the credential kinds with their environment status.
func KnownSecrets() []SecretKind {
	result := make([]SecretKind, len(knownSecrets))
	for i, s := range knownSecrets {
		s.HasKey = os.Getenv(s.EnvVar) != ""
		result[i] = s
	}
	return result
}

func lookupSecret(id string) (SecretKind, bool) {
	for _, s := range knownSecrets {
		if s.ID == id {
			return s, true
		}
	}
	return SecretKind{}, false
}

// StoredSecret is a single persisted credential.
type StoredSecret struct {
	Value   string    `json:"value"`
	AddedAt time.Time `json:"added_at"`
}

// StoredCredentials holds all stored credentials.
type StoredCredentials struct {
	Version     int                     `json:"version"`
	Credentials map[string]StoredSecret `json:"credentials"`
}

var (
	credentialsMu    sync.RWMutex
	credentialsCache *StoredCredentials
)

func credentialsPath() string {
	return filepath.Join(paths.ConfigDir(), "credentials.json")
}

// LoadStoredCredentials reads credentials from disk.
func LoadStoredCredentials() (*StoredCredentials, error) {
	credentialsMu.RLock()
	if credentialsCache != nil {
		defer credentialsMu.RUnlock()
		return credentialsCache, nil
	}
	credentialsMu.RUnlock()

	credentialsMu.Lock()
	defer credentialsMu.Unlock()

	// Double-check after acquiring write lock
	if credentialsCache != nil {
		return credentialsCache, nil
	}

	data, err := os.ReadFile(credentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			credentialsCache = &StoredCredentials{
				Version:     1,
				Credentials: make(map[string]StoredSecret),
			}
			return credentialsCache, nil
		}
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.Credentials == nil {
		creds.Credentials = make(map[string]StoredSecret)
	}

	credentialsCache = &creds
	return credentialsCache, nil
}

// SaveCredentials writes credentials to disk readable only by the owner.
func SaveCredentials(creds *StoredCredentials) error {
	credentialsMu.Lock()
	defer credentialsMu.Unlock()

	path := credentialsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}

	credentialsCache = creds
	return nil
}

// StoreCredential persists a secret under one of the known ids.
func StoreCredential(id, value string) error {
	if _, ok := lookupSecret(id); !ok {
		return fmt.Errorf("unknown credential %q", id)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("credential %q is empty", id)
	}

	creds, err := LoadStoredCredentials()
	if err != nil {
		return err
	}
	creds.Credentials[id] = StoredSecret{
		Value:   value,
		AddedAt: time.Now(),
	}
	return SaveCredentials(creds)
}

// RemoveCredential deletes a stored secret. Removing an absent id is not an error.
func RemoveCredential(id string) error {
	creds, err := LoadStoredCredentials()
	if err != nil {
		return err
	}
	if _, ok := creds.Credentials[id]; !ok {
		return nil
	}
	delete(creds.Credentials, id)
	return SaveCredentials(creds)
}

// resolveSecret prefers the environment over the stored value.
func resolveSecret(id string) string {
	kind, ok := lookupSecret(id)
	if !ok {
		return ""
	}
	if v := strings.TrimSpace(os.Getenv(kind.EnvVar)); v != "" {
		return v
	}
	creds, err := LoadStoredCredentials()
	if err != nil {
		return ""
	}
	return creds.Credentials[id].Value
}

// applySecrets fills empty credential fields from the environment or the store.
func (c *Config) applySecrets() {
	if strings.TrimSpace(c.Source.GitHub.Token) == "" {
		c.Source.GitHub.Token = resolveSecret("github")
	}
	if c.Source.S3.AccessKey == "" {
		c.Source.S3.AccessKey = resolveSecret("s3-access-key")
	}
	if c.Source.S3.SecretKey == "" {
		c.Source.S3.SecretKey = resolveSecret("s3-secret-key")
	}
}

// ClearCredentialCache clears the in-memory credential cache.
// Useful for testing.
func ClearCredentialCache() {
	credentialsMu.Lock()
	defer credentialsMu.Unlock()
	credentialsCache = nil
}
