// Package securecookie signs session values as "<value>|<hex hmac-sha256>".
package securecookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const separator = "|"

// ErrEmptySecret is returned by New when no signing key is configured.
var ErrEmptySecret = errors.New("cookie secret is required")

// Codec signs and verifies cookie values with a fixed secret.
type Codec struct {
	secret []byte
}

func New(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Sign returns value followed by the separator and its MAC.
func (c *Codec) Sign(value string) string {
	return value + separator + hex.EncodeToString(c.mac(value))
}

// Verify returns the signed value, or false when the token is malformed or tampered with.
func (c *Codec) Verify(token string) (string, bool) {
	idx := strings.LastIndex(token, separator)
	if idx < 0 {
		return "", false
	}
	value, sig := token[:idx], token[idx+len(separator):]
	if len(sig) != hex.EncodedLen(sha256.Size) {
		return "", false
	}
	// compare the lowercase hex form so that case-flipped digits are rejected
	want := hex.EncodeToString(c.mac(value))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}
	return value, true
}

func (c *Codec) mac(value string) []byte {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(value))
	return h.Sum(nil)
}
