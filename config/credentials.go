package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"golang.org/x/term"
)

const baseCredPath = "newsdesk/creds.toml"

// DefaultModel is used when the credentials file does not name one.
const DefaultModel = "gemini-2.5-flash"

// Credentials holds all application credentials
type Credentials struct {
	Gemini GeminiCredentials `toml:"gemini"`
}

// GeminiCredentials holds Google Gemini API credentials
type GeminiCredentials struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"` // e.g., "gemini-2.5-flash"
}

// IsValid checks if Gemini credentials are fully populated
func (gc GeminiCredentials) IsValid() bool {
	return gc.APIKey != "" && gc.Model != ""
}

// ReadCredentials reads credentials from the specified path
func ReadCredentials(path string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		return creds, err
	}

	if _, err := toml.Decode(string(data), &creds); err != nil {
		return creds, fmt.Errorf("failed to decode credentials at %s: %w", path, err)
	}

	return creds, nil
}

// WriteCredentials writes credentials to the specified path
func WriteCredentials(path string, creds Credentials) error {
	blob, err := toml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	basePath := filepath.Dir(path)
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return fmt.Errorf("failed to create credentials directory at '%s': %w", basePath, err)
	}

	// Write with restrictive permissions (only owner can read/write)
	if err := os.WriteFile(path, blob, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file at '%s': %w", path, err)
	}

	return nil
}

// DefaultCredentialsPath returns the default path for credentials file
func DefaultCredentialsPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return filepath.Join(xdgHome, baseCredPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", baseCredPath)
	}

	panic("unable to determine credentials file path")
}

// PromptGeminiCredentials prompts the user for Gemini credentials.
// The API key is read without echoing it to the terminal.
func PromptGeminiCredentials() (GeminiCredentials, error) {
	var creds GeminiCredentials

	fmt.Println("Gemini credentials not found. Please provide the following information:")
	fmt.Println()
	fmt.Println("To get an API key:")
	fmt.Println("  1. Go to https://aistudio.google.com/apikey")
	fmt.Println("  2. Create an API key for your project")
	fmt.Println()

	fmt.Print("Enter API key (input hidden): ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return creds, fmt.Errorf("failed to read API key: %w", err)
	}
	creds.APIKey = strings.TrimSpace(string(keyBytes))

	fmt.Printf("Enter model [%s]: ", DefaultModel)
	model, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return creds, fmt.Errorf("failed to read model name: %w", err)
	}
	creds.Model = strings.TrimSpace(model)
	if creds.Model == "" {
		creds.Model = DefaultModel
	}

	if !creds.IsValid() {
		return creds, fmt.Errorf("API key is required")
	}

	return creds, nil
}

// LoadOrPromptGeminiCredentials loads Gemini credentials or prompts for them
func LoadOrPromptGeminiCredentials(credPath string) (GeminiCredentials, error) {
	// Try to load existing credentials
	creds, err := ReadCredentials(credPath)
	if err == nil && creds.Gemini.IsValid() {
		return creds.Gemini, nil
	}

	// Credentials not found or invalid, prompt user
	geminiCreds, err := PromptGeminiCredentials()
	if err != nil {
		return GeminiCredentials{}, err
	}

	// Save credentials
	creds.Gemini = geminiCreds
	if err := WriteCredentials(credPath, creds); err != nil {
		return geminiCreds, fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Printf("Credentials saved to %s\n", credPath)
	fmt.Println()

	return geminiCreds, nil
}
