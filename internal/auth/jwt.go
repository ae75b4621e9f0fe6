package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig mints HS256 tokens for APIs that accept self-issued bearer JWTs.
type JWTConfig struct {
	Secret     string `mapstructure:"secret" yaml:"secret"`
	TTLSeconds int64  `mapstructure:"ttl_seconds" yaml:"ttl_seconds"` // default 300

	Subject   string   `mapstructure:"sub" yaml:"sub"`
	Issuer    string   `mapstructure:"iss" yaml:"iss"`
	Audience  []string `mapstructure:"aud" yaml:"aud"`
	NotBefore int64    `mapstructure:"nbf" yaml:"nbf"`
	ExpiresAt int64    `mapstructure:"exp" yaml:"exp"`
	ID        string   `mapstructure:"jti" yaml:"jti"`

	Custom map[string]any `mapstructure:"custom" yaml:"custom"`
}

// Issue returns a signed token string.
func (c JWTConfig) Issue() (string, error) {
	return c.issueAt(time.Now())
}

func (c JWTConfig) issueAt(now time.Time) (string, error) {
	if c.Secret == "" {
		return "", errors.New("jwt: secret required")
	}
	exp := c.ExpiresAt
	if exp == 0 {
		ttl := c.TTLSeconds
		if ttl <= 0 {
			ttl = 300
		}
		exp = now.Unix() + ttl
	}
	claims := jwt.MapClaims{}
	for k, v := range c.Custom {
		claims[k] = v
	}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if len(c.Audience) > 0 {
		claims["aud"] = c.Audience
	}
	if c.NotBefore > 0 {
		claims["nbf"] = c.NotBefore
	}
	if c.ID != "" {
		claims["jti"] = c.ID
	}
	claims["iat"] = now.Unix()
	claims["exp"] = exp

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.Secret))
}

// Bearer mints a token and wraps it in a Bearer variant.
func (c JWTConfig) Bearer() (Auth, error) {
	tok, err := c.Issue()
	if err != nil {
		return Auth{}, err
	}
	return Bearer(tok), nil
}

// VerifyOptions configures VerifyJWT.
type VerifyOptions struct {
	Secret   []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
}

var ErrInvalidToken = errors.New("jwt: invalid token")

// VerifyJWT parses an HS256 token (with or without a "Bearer " prefix) and
// returns its claims. exp and nbf are enforced by the parser.
func VerifyJWT(token string, opts VerifyOptions) (jwt.MapClaims, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt: secret not configured")
	}
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
