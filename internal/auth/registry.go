package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Method acquires an Auth variant from a decoded config block.
type Method interface {
	Acquire(ctx context.Context) (Auth, error)
}

// Factory builds a Method from a loosely-typed config map.
type Factory func(spec map[string]any) (Method, error)

// MethodFunc adapts a plain function to Method.
type MethodFunc func(ctx context.Context) (Auth, error)

func (f MethodFunc) Acquire(ctx context.Context) (Auth, error) { return f(ctx) }

var (
	providersMu sync.RWMutex
	providers   = map[string]Factory{}
)

func normalizeType(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// Register installs a factory under typ. Blank types and nil factories are ignored.
func Register(typ string, f Factory) {
	key := normalizeType(typ)
	if key == "" || f == nil {
		return
	}
	providersMu.Lock()
	providers[key] = f
	providersMu.Unlock()
}

// Types lists the registered provider types.
func Types() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	out := make([]string, 0, len(providers))
	for k := range providers {
		out = append(out, k)
	}
	return out
}

// Spec is the shape of an auth block in config:
//
//	auth:
//	  type: oauth2
//	  config:
//	    grant_type: client_credentials
//	    ...
type Spec struct {
	Type   string         `mapstructure:"type"`
	Config map[string]any `mapstructure:"config"`
}

// FromMap decodes an auth block and acquires the variant it describes.
// A nil or empty block yields None.
func FromMap(ctx context.Context, m map[string]any) (Auth, error) {
	if len(m) == 0 {
		return None(), nil
	}
	var s Spec
	if err := mapstructure.Decode(m, &s); err != nil {
		return Auth{}, err
	}
	return Acquire(ctx, s.Type, s.Config)
}

// Acquire builds the provider registered under typ and runs it.
func Acquire(ctx context.Context, typ string, spec map[string]any) (Auth, error) {
	key := normalizeType(typ)
	if key == "" {
		return Auth{}, errors.New("auth: missing type")
	}
	providersMu.RLock()
	f, ok := providers[key]
	providersMu.RUnlock()
	if !ok {
		return Auth{}, errors.New("auth: unsupported provider type: " + typ)
	}
	m, err := f(spec)
	if err != nil {
		return Auth{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return m.Acquire(ctx)
}

func decodeInto[T any](spec map[string]any) (T, error) {
	var c T
	err := mapstructure.Decode(spec, &c)
	return c, err
}

func init() {
	Register("none", func(map[string]any) (Method, error) {
		return MethodFunc(func(context.Context) (Auth, error) { return None(), nil }), nil
	})

	Register("bearer", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[struct {
			Token string `mapstructure:"token"`
		}](spec)
		if err != nil {
			return nil, err
		}
		return MethodFunc(func(context.Context) (Auth, error) {
			if strings.TrimSpace(c.Token) == "" {
				return Auth{}, errors.New("bearer: token is required")
			}
			return Bearer(c.Token), nil
		}), nil
	})

	Register("basic", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[BasicConfig](spec)
		if err != nil {
			return nil, err
		}
		return MethodFunc(func(context.Context) (Auth, error) {
			if _, err := basicValue(c.Username, c.Password); err != nil {
				return Auth{}, err
			}
			return Basic(c.Username, c.Password), nil
		}), nil
	})

	Register("api_key", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[struct {
			Header string `mapstructure:"header"`
			Value  string `mapstructure:"value"`
		}](spec)
		if err != nil {
			return nil, err
		}
		return MethodFunc(func(context.Context) (Auth, error) {
			if c.Value == "" {
				return Auth{}, errors.New("api_key: value is required")
			}
			return APIKey(c.Header, c.Value), nil
		}), nil
	})

	Register("oauth2", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[OAuth2Config](spec)
		if err != nil {
			return nil, err
		}
		return MethodFunc(c.Token), nil
	})

	Register("jwt", func(spec map[string]any) (Method, error) {
		c, err := decodeInto[JWTConfig](spec)
		if err != nil {
			return nil, err
		}
		return MethodFunc(func(context.Context) (Auth, error) { return c.Bearer() }), nil
	})
}
