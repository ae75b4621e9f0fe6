package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestAuth_Headers(t *testing.T) {
	cases := []struct {
		name       string
		a          Auth
		wantHeader string
		wantValue  string
	}{
		{"none", None(), "", ""},
		{"bearer", Bearer(" tok "), "Authorization", "Bearer tok"},
		{"basic", Basic("alice", "secret"), "Authorization", "Basic YWxpY2U6c2VjcmV0"},
		{"basic special", Basic("bob", "p@ss"), "Authorization", "Basic Ym9iOnBAc3M="},
		{"basic keeps spaces", Basic("user", " pass "), "Authorization", "Basic dXNlcjogcGFzcyA="},
		{"basic empty password", Basic("user", ""), "Authorization", "Basic dXNlcjo="},
		{"api key", APIKey("X-Custom", "k1"), "X-Custom", "k1"},
		{"api key default header", APIKey("", "k2"), "x-api-key", "k2"},
	}
	for _, tc := range cases {
		h, v, err := tc.a.Header()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if h != tc.wantHeader || v != tc.wantValue {
			t.Fatalf("%s: got %q=%q, want %q=%q", tc.name, h, v, tc.wantHeader, tc.wantValue)
		}
	}
}

func TestAuth_ZeroValueIsNone(t *testing.T) {
	var a Auth
	if !a.IsNone() || a.Kind() != KindNone || a.HeaderName() != "" {
		t.Fatalf("zero value should be None: %v", a)
	}
}

func TestAuth_EmptyCredentials(t *testing.T) {
	if _, _, err := Bearer("  ").Header(); !errors.Is(err, ErrEmptyCredential) {
		t.Fatalf("expected empty credential error, got %v", err)
	}
	if _, _, err := APIKey("x", "").Header(); !errors.Is(err, ErrEmptyCredential) {
		t.Fatalf("expected empty credential error, got %v", err)
	}
	for i, a := range []Auth{Basic("", "x"), Basic("  ", "x"), Basic("a:b", "x")} {
		_, _, err := a.Header()
		if err == nil || !strings.Contains(err.Error(), "basic:") {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
	}
}

func TestAuth_StringHidesCredential(t *testing.T) {
	s := Bearer("super-secret").String()
	if strings.Contains(s, "super-secret") {
		t.Fatalf("String leaked the token: %s", s)
	}
	if s != "bearer(Authorization)" {
		t.Fatalf("unexpected String: %s", s)
	}
}

func TestHeaderOrDefault(t *testing.T) {
	if got := HeaderOrDefault(""); got != "Authorization" {
		t.Fatalf("expected Authorization, got %q", got)
	}
	if got := HeaderOrDefault("  X-API-Key "); got != "X-API-Key" {
		t.Fatalf("expected X-API-Key, got %q", got)
	}
}
