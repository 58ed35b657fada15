package auth

import (
	"fmt"
	"os"
	"strings"
)

// TokenEnv names the variable EnvTokenProvider reads.
const TokenEnv = "TERMINALFEED_ACCESS_TOKEN"

// TokenProvider supplies an access token for API authentication.
type TokenProvider interface {
	AccessToken() (string, error)
}

// FileTokenProvider reads a bearer token from a file on disk.
// The file is re-read on every call so a replaced token takes effect
// without a restart.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a TokenProvider that reads from the given file path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// AccessToken reads and returns the token, trimming whitespace.
func (f *FileTokenProvider) AccessToken() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", f.path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.path)
	}

	return token, nil
}

// EnvTokenProvider reads the token from TokenEnv.
type EnvTokenProvider struct{}

func NewEnvTokenProvider() EnvTokenProvider { return EnvTokenProvider{} }

func (EnvTokenProvider) AccessToken() (string, error) {
	tok := strings.TrimSpace(os.Getenv(TokenEnv))
	if tok == "" {
		return "", fmt.Errorf("%s is empty", TokenEnv)
	}
	return tok, nil
}

// Resolve prefers a token in the environment and falls back to the file.
func Resolve(path string) TokenProvider {
	if strings.TrimSpace(os.Getenv(TokenEnv)) != "" {
		return NewEnvTokenProvider()
	}
	return NewFileTokenProvider(path)
}
