package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string // Overrides the saved per-game token
	TokenDir  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("SNAKECTL_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("SNAKECTL_TOKEN"),
		TokenDir:  getEnvOrDefault("SNAKECTL_TOKEN_DIR", defaultTokenDir()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadToken returns the control token for a game. An explicit token wins
// over the saved one; a missing token file yields an empty token.
func (c *Config) LoadToken(gameID string) (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}

	path, err := c.tokenPath(gameID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken stores the control token for a game
func (c *Config) SaveToken(gameID, token string) error {
	path, err := c.tokenPath(gameID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0600)
}

// DeleteToken forgets the control token for a game
func (c *Config) DeleteToken(gameID string) error {
	path, err := c.tokenPath(gameID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Config) tokenPath(gameID string) (string, error) {
	if gameID == "" || gameID != filepath.Base(gameID) || strings.HasPrefix(gameID, ".") {
		return "", fmt.Errorf("invalid game id %q", gameID)
	}
	return filepath.Join(c.TokenDir, gameID), nil
}

func defaultTokenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".snakectl", "tokens")
	}
	return filepath.Join(home, ".snakectl", "tokens")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
