package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGenerateKeyHex loads or generates the PASETO v4 symmetric key
// for session tokens. The key is stored in <dataDir>/session.key as a
// hex-encoded string; a missing file triggers generation. Returns the
// hex encoding ready for NewTokenService.
func LoadOrGenerateKeyHex(dataDir string) (string, error) {
	keyPath := filepath.Join(dataDir, "session.key")

	//#nosec G304 -- key path is derived from the validated data dir
	if raw, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(raw))
		if len(keyHex) != keyHexSize {
			return "", fmt.Errorf("invalid session key length: expected %d hex chars, got %d", keyHexSize, len(keyHex))
		}
		if _, err := hex.DecodeString(keyHex); err != nil {
			return "", fmt.Errorf("invalid session key: not valid hex: %w", err)
		}
		return keyHex, nil
	}

	key := make([]byte, keyBytesSize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate session key: %w", err)
	}
	keyHex := hex.EncodeToString(key)

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return "", fmt.Errorf("save session key: %w", err)
	}

	return keyHex, nil
}
