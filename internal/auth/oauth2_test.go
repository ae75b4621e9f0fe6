package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func tokenServer(t *testing.T, wantGrant string, resp tokenResp) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != wantGrant {
			t.Errorf("grant_type: got %q want %q", got, wantGrant)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOAuth2_PasswordGrant(t *testing.T) {
	srv := tokenServer(t, "password", tokenResp{AccessToken: "t-pass", TokenType: "Bearer"})
	defer srv.Close()

	a, err := OAuth2Config{
		ClientID: "client",
		TokenURL: srv.URL + "/token",
		Username: "user",
		Password: "pass",
	}.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, v, _ := a.Header()
	if v != "Bearer t-pass" {
		t.Fatalf("unexpected value: %q", v)
	}
}

func TestOAuth2_ClientCredentialsGrant(t *testing.T) {
	srv := tokenServer(t, "client_credentials", tokenResp{AccessToken: "t-cc"})
	defer srv.Close()

	a, err := OAuth2Config{
		GrantType: "client-credentials",
		ClientID:  "cid",
		ClientSec: "sec",
		TokenURL:  srv.URL,
	}.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Kind() != KindBearer {
		t.Fatalf("expected bearer, got %v", a)
	}
}

func TestOAuth2_RejectsNonBearerToken(t *testing.T) {
	srv := tokenServer(t, "client_credentials", tokenResp{AccessToken: "mac", TokenType: "mac"})
	defer srv.Close()

	_, err := OAuth2Config{ClientID: "cid", ClientSec: "sec", TokenURL: srv.URL}.Token(context.Background())
	if err == nil {
		t.Fatalf("expected error for non-bearer token type")
	}
}

func TestOAuth2_ValidationErrors(t *testing.T) {
	cases := []OAuth2Config{
		{GrantType: "password"},
		{GrantType: "password", TokenURL: "http://x"},
		{GrantType: "client_credentials"},
		{GrantType: "client_credentials", TokenURL: "http://x", ClientID: "only"},
		{GrantType: "implicit"},
	}
	for i, c := range cases {
		if _, err := c.Token(context.Background()); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
