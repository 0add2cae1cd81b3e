package credstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName    = "sandboxctl"
	tokenFileName = "token"
)

// DefaultPath returns <user config dir>/sandboxctl/token.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, tokenFileName), nil
}

// File stores the credential in a single owner-only file.
type File struct {
	path   string
	cipher Cipher
}

func NewFile(path string, c Cipher) *File {
	if c == nil {
		c = Plaintext{}
	}
	return &File{path: path, cipher: c}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context) (string, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read credential file: %w", err)
	}

	sealed := strings.TrimSpace(string(data))
	if sealed == "" {
		return "", false, nil
	}

	value, err := f.cipher.Open(sealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to open stored credential: %w", err)
	}
	return value, true, nil
}

// Set writes through a temp file and rename so a crash never leaves a torn token.
func (f *File) Set(_ context.Context, value string) error {
	sealed, err := f.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal credential: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+tokenFileName+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict credential file: %w", err)
	}
	if _, err := tmp.WriteString(sealed); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

func (f *File) Remove(_ context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}
