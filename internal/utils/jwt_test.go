package utils

import (
	"errors"
	"testing"
	"time"
)

func TestMailTokenRoundTrip(t *testing.T) {
	signer := MailTokenSigner{Secret: []byte("test-secret"), TTL: time.Hour}

	token, err := signer.Generate("a@b.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	email, err := signer.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if email != "a@b.com" {
		t.Errorf("email = %q, want a@b.com", email)
	}
}

func TestMailTokenRejections(t *testing.T) {
	signer := MailTokenSigner{Secret: []byte("test-secret"), TTL: time.Hour}

	expired, err := MailTokenSigner{Secret: []byte("test-secret"), TTL: -time.Minute}.Generate("a@b.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	foreign, err := MailTokenSigner{Secret: []byte("other-secret"), TTL: time.Hour}.Generate("a@b.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	missingEmail, err := MailTokenSigner{Secret: []byte("test-secret"), TTL: time.Hour}.Generate("")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "empty email claim", token: missingEmail},
		{name: "garbage", token: "not.a.jwt"},
		{name: "empty", token: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := signer.Decode(test.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Decode() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Ann@Example.COM ", want: "ann@example.com"},
		{in: "ann@example.com", want: "ann@example.com"},
		{in: "", want: ""},
	}

	for _, test := range tests {
		if got := NormalizeEmail(test.in); got != test.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
