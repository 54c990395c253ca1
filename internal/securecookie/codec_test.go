package securecookie

import (
	"errors"
	"strings"
	"testing"
)

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New("test-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestSignVerifyRoundTrip(t *testing.T) {
	c := newCodec(t)
	for _, v := range []string{"alice", "", "bob_42", "with|pipe", "ünïcode"} {
		token := c.Sign(v)
		got, ok := c.Verify(token)
		if !ok || got != v {
			t.Fatalf("verify(sign(%q)) = %q, %v", v, got, ok)
		}
	}
}

func TestSignFormat(t *testing.T) {
	c := newCodec(t)
	token := c.Sign("alice")
	parts := strings.SplitN(token, "|", 2)
	if len(parts) != 2 || parts[0] != "alice" || len(parts[1]) != 64 {
		t.Fatalf("unexpected token %q", token)
	}
	if c.Sign("alice") != token {
		t.Fatal("sign is not deterministic")
	}
}

func TestVerifyRejectsSingleBitFlips(t *testing.T) {
	c := newCodec(t)
	token := []byte(c.Sign("alice"))
	for i := range token {
		for bit := 0; bit < 8; bit++ {
			tampered := make([]byte, len(token))
			copy(tampered, token)
			tampered[i] ^= 1 << bit
			if v, ok := c.Verify(string(tampered)); ok {
				t.Fatalf("flip byte %d bit %d accepted as %q", i, bit, v)
			}
		}
	}
}

func TestVerifyMalformed(t *testing.T) {
	c := newCodec(t)
	for _, token := range []string{"", "alice", "alice|", "alice|zz", "|abcd", "alice|" + strings.Repeat("0", 64)} {
		if _, ok := c.Verify(token); ok {
			t.Fatalf("token %q accepted", token)
		}
	}
}

func TestVerifyOtherSecret(t *testing.T) {
	c := newCodec(t)
	other, err := New("another-secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	if _, ok := other.Verify(c.Sign("alice")); ok {
		t.Fatal("token signed with a different secret accepted")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New("  "); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}
