package baseurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// TokenLength is the number of random characters appended to the base URL.
const TokenLength = 8

// Validate accepts only absolute URLs: a scheme plus a host, an opaque part or a path.
func Validate(longURL string) error {
	u, err := url.ParseRequestURI(longURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return errors.New("missing scheme")
	}
	if u.Host == "" && u.Opaque == "" && u.Path == "" {
		return errors.New("missing host")
	}
	return nil
}

// NewShortURL draws a random token from a v4 UUID and prefixes it with base.
func NewShortURL(base string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return Normalize(base) + id.String()[:TokenLength], nil
}

// Normalize makes sure base ends with a slash.
func Normalize(base string) string {
	if !strings.HasSuffix(base, "/") {
		return base + "/"
	}
	return base
}
