package jwt

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func unsignedToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".sig"
}

func TestExpiresAtReadsExpWithoutVerifying(t *testing.T) {
	tok := unsignedToken(`{"sub":"user@court.com","exp":1893456000}`)
	exp, err := ExpiresAt(tok)
	if err != nil {
		t.Fatalf("expires at: %v", err)
	}
	if !exp.Equal(time.Unix(1893456000, 0)) {
		t.Fatalf("unexpected exp %v", exp)
	}
}

func TestExpiresAtIgnoresHeader(t *testing.T) {
	body := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":1893456000}`))
	noAlg := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`))

	for name, tok := range map[string]string{
		"opaque header":      "abc." + body + ".sig",
		"header without alg": noAlg + "." + body + ".sig",
		"empty signature":    noAlg + "." + body + ".",
	} {
		t.Run(name, func(t *testing.T) {
			exp, err := ExpiresAt(tok)
			if err != nil {
				t.Fatalf("expires at: %v", err)
			}
			if !exp.Equal(time.Unix(1893456000, 0)) {
				t.Fatalf("unexpected exp %v", exp)
			}
		})
	}
}

func TestExpiresAtFractionalSeconds(t *testing.T) {
	exp, err := ExpiresAt(unsignedToken(`{"exp":1700000000.5}`))
	if err != nil {
		t.Fatalf("expires at: %v", err)
	}
	if exp.Unix() != 1700000000 {
		t.Fatalf("unexpected exp %v", exp)
	}
}

func TestExpiresAtErrors(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMalformedToken},
		{"no dots", "abc", ErrMalformedToken},
		{"four segments", unsignedToken(`{"exp":1893456000}`) + ".extra", ErrMalformedToken},
		{"bad base64", "aaa.!!!.ccc", ErrMalformedToken},
		{"payload not json", "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".x", ErrMalformedToken},
		{"no exp", unsignedToken(`{"sub":"a"}`), ErrMissingExpiry},
		{"exp not a number", unsignedToken(`{"exp":"tomorrow"}`), ErrMissingExpiry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ExpiresAt(tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d, err := Remaining(unsignedToken(`{"exp":1699999999}`), now)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if d != -time.Second {
		t.Fatalf("expected -1s, got %v", d)
	}
}

func FuzzExpiresAt(f *testing.F) {
	f.Add("")
	f.Add("not.a.jwt")
	f.Add(unsignedToken(`{"exp":1}`))
	f.Add("eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ0ZXN0In0.")

	f.Fuzz(func(t *testing.T, input string) {
		exp, err := ExpiresAt(input)
		if err == nil && exp.IsZero() {
			t.Fatal("ExpiresAt returned zero time without error")
		}
	})
}
