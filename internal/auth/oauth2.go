package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Config holds configuration for OAuth2 token acquisition.
type OAuth2Config struct {
	GrantType string   `mapstructure:"grant_type"` // password or client_credentials
	ClientID  string   `mapstructure:"client_id"`
	ClientSec string   `mapstructure:"client_secret"`
	AuthURL   string   `mapstructure:"auth_url"`
	TokenURL  string   `mapstructure:"token_url"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Scopes    []string `mapstructure:"scopes"`

	// TLS applies to the token endpoint call.
	TLS *tls.Config `mapstructure:"-"`
}

// Token runs the configured grant and returns the access token as a Bearer variant.
// An empty grant_type picks password when a username is set, client_credentials otherwise.
func (c OAuth2Config) Token(ctx context.Context) (Auth, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.TLS != nil {
		hc := &http.Client{Transport: &http.Transport{TLSClientConfig: c.TLS}}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}

	var (
		tok *oauth2.Token
		err error
	)
	switch c.grant() {
	case "password":
		tok, err = c.password(ctx)
	case "client_credentials":
		tok, err = c.clientCredentials(ctx)
	default:
		return Auth{}, errors.New("oauth2: unsupported grant_type: " + c.GrantType)
	}
	if err != nil {
		return Auth{}, err
	}
	return normalizeOAuth2Token(tok)
}

func (c OAuth2Config) grant() string {
	g := strings.ToLower(strings.TrimSpace(c.GrantType))
	g = strings.ReplaceAll(g, "-", "_")
	if g == "" {
		if strings.TrimSpace(c.Username) != "" {
			return "password"
		}
		return "client_credentials"
	}
	return g
}

func (c OAuth2Config) password(ctx context.Context) (*oauth2.Token, error) {
	clientID := strings.TrimSpace(c.ClientID)
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	tokenURL := strings.TrimSpace(c.TokenURL)
	if tokenURL == "" {
		return nil, errors.New("oauth2: token_url is required for password grant")
	}
	if clientID == "" || username == "" || password == "" {
		return nil, errors.New("oauth2: client_id, username and password are required for password grant")
	}
	ocfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: strings.TrimSpace(c.ClientSec),
		Endpoint: oauth2.Endpoint{
			AuthURL:   strings.TrimSpace(c.AuthURL),
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: c.Scopes,
	}
	return ocfg.PasswordCredentialsToken(ctx, username, password)
}

func (c OAuth2Config) clientCredentials(ctx context.Context) (*oauth2.Token, error) {
	clientID := strings.TrimSpace(c.ClientID)
	clientSecret := strings.TrimSpace(c.ClientSec)
	tokenURL := strings.TrimSpace(c.TokenURL)
	if tokenURL == "" {
		return nil, errors.New("oauth2: token_url is required for client_credentials grant")
	}
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("oauth2: client_id and client_secret are required for client_credentials grant")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       c.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cc.Token(ctx)
}

// normalizeOAuth2Token accepts only valid bearer tokens.
func normalizeOAuth2Token(tok *oauth2.Token) (Auth, error) {
	if tok == nil || !tok.Valid() || strings.TrimSpace(tok.AccessToken) == "" {
		return Auth{}, errors.New("oauth2: received invalid token")
	}
	if typ := tok.Type(); !strings.EqualFold(typ, "Bearer") {
		return Auth{}, errors.New("oauth2: unsupported token type: " + typ)
	}
	return Bearer(tok.AccessToken), nil
}
