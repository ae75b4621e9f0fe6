// Package auth models the request authentication variants (none, bearer,
// basic, api key) and the flows that acquire them: OAuth2 password and
// client-credentials grants and locally minted HS256 JWTs.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hk1947/apicontract/internal/constants"
)

// Kind identifies the variant held by an Auth value.
type Kind int

const (
	KindNone Kind = iota
	KindBearer
	KindBasic
	KindAPIKey
)

func (k Kind) String() string {
	switch k {
	case KindBearer:
		return "bearer"
	case KindBasic:
		return "basic"
	case KindAPIKey:
		return "api_key"
	default:
		return "none"
	}
}

// Auth is an immutable authentication variant. The zero value is None.
type Auth struct {
	kind   Kind
	header string
	value  string // bearer token or api key value
	user   string
	pass   string
}

// None sends no credentials.
func None() Auth { return Auth{} }

// Bearer sends "Authorization: Bearer <token>".
func Bearer(token string) Auth {
	return Auth{kind: KindBearer, header: constants.HeaderAuthorization, value: strings.TrimSpace(token)}
}

// Basic sends "Authorization: Basic base64(user:pass)".
func Basic(user, pass string) Auth {
	return Auth{kind: KindBasic, header: constants.HeaderAuthorization, user: user, pass: pass}
}

// APIKey sends the raw value under header. An empty header means x-api-key.
func APIKey(header, value string) Auth {
	if strings.TrimSpace(header) == "" {
		header = constants.DefaultAPIKeyHeader
	}
	return Auth{kind: KindAPIKey, header: strings.TrimSpace(header), value: value}
}

func (a Auth) Kind() Kind { return a.kind }

// IsNone reports whether a carries no credentials.
func (a Auth) IsNone() bool { return a.kind == KindNone }

// HeaderName is the header a writes, or "" for None.
func (a Auth) HeaderName() string {
	if a.kind == KindNone {
		return ""
	}
	return a.header
}

var ErrEmptyCredential = errors.New("auth: empty credential")

// Header returns the header name and value to send. None yields empty strings.
func (a Auth) Header() (string, string, error) {
	switch a.kind {
	case KindNone:
		return "", "", nil
	case KindBearer:
		if a.value == "" {
			return "", "", fmt.Errorf("bearer: %w", ErrEmptyCredential)
		}
		return a.header, "Bearer " + a.value, nil
	case KindBasic:
		v, err := basicValue(a.user, a.pass)
		if err != nil {
			return "", "", err
		}
		return a.header, v, nil
	case KindAPIKey:
		if a.value == "" {
			return "", "", fmt.Errorf("api key %s: %w", a.header, ErrEmptyCredential)
		}
		return a.header, a.value, nil
	default:
		return "", "", fmt.Errorf("auth: unknown kind %d", a.kind)
	}
}

// String never prints the credential itself.
func (a Auth) String() string {
	if a.kind == KindNone {
		return "none"
	}
	return a.kind.String() + "(" + a.header + ")"
}

// HeaderOrDefault returns Authorization when h is blank.
func HeaderOrDefault(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return constants.HeaderAuthorization
	}
	return h
}
