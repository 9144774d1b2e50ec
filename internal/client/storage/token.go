// Package storage persists the client's bearer token between runs.  The
// token lives alone in a single file; an absent file means unauthenticated.
package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// TokenFile stores the raw bearer token string at Path.
type TokenFile struct {
	Path string
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{Path: path}
}

// Load returns the persisted token, or "" when none is stored.  A missing
// file is not an error.
func (t *TokenFile) Load() (string, error) {
	b, err := os.ReadFile(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Save writes the token, creating parent directories as needed.  The file
// is private to the user.
func (t *TokenFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(t.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(t.Path, []byte(token), 0o600)
}

// Clear removes the persisted token.  Clearing an already-absent token is
// not an error.
func (t *TokenFile) Clear() error {
	err := os.Remove(t.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
