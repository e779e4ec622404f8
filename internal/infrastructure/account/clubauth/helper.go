package clubauth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// joinTransient tags a sentinel so the circuit breaker counts the failure
// while callers still match the sentinel with errors.Is.
func joinTransient(sentinel error) error {
	return fmt.Errorf("%w (%w)", sentinel, errTransient)
}

// hashToken keys the principal cache without holding raw tokens in memory.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
