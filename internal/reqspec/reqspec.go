// Package reqspec builds immutable request templates: base URL, default
// headers and query parameters, content type and authentication.
//
// Spec is a value type. Every With method copies the receiver's maps and
// returns a new Spec, so a base spec can be shared across parallel tests.
package reqspec

import (
	"net/http"
	"sort"
	"strings"

	"github.com/hk1947/apicontract/internal/auth"
	"github.com/hk1947/apicontract/internal/constants"
	"github.com/hk1947/apicontract/internal/util"
)

// ContentType selects how request bodies are encoded.
type ContentType int

const (
	JSON ContentType = iota
	Form
	Multipart
)

func (c ContentType) String() string {
	switch c {
	case Form:
		return "form"
	case Multipart:
		return "multipart"
	default:
		return "json"
	}
}

// MIME is the Content-Type header value. Multipart boundaries are added by the transport.
func (c ContentType) MIME() string {
	switch c {
	case Form:
		return "application/x-www-form-urlencoded"
	case Multipart:
		return "multipart/form-data"
	default:
		return "application/json"
	}
}

// Source supplies the config values a base spec is built from.
// *config.Provider satisfies it.
type Source interface {
	BaseURL() string
	LoggingEnabled() bool
	APIKey() string
	APIKeyHeader() string
}

type Spec struct {
	baseURL     string
	headers     map[string]string
	query       map[string]string
	contentType ContentType
	accept      string
	auth        auth.Auth
	logging     bool
}

// New returns a JSON spec for baseURL with no auth and logging off.
func New(baseURL string) Spec {
	return Spec{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		contentType: JSON,
		accept:      "application/json",
	}
}

// Base builds the default spec from config: JSON in and out, logging as
// configured, and the configured API key when one is set. The key is a
// default header, so auth overlays are sent alongside it.
func Base(src Source) Spec {
	s := New(src.BaseURL()).WithLogging(src.LoggingEnabled())
	if key := strings.TrimSpace(src.APIKey()); key != "" {
		s = s.WithHeader(util.TrimWithDefault(src.APIKeyHeader(), constants.DefaultAPIKeyHeader), key)
	}
	return s
}

// FormSpec is Base with form-urlencoded bodies.
func FormSpec(src Source) Spec { return Base(src).WithContentType(Form) }

// MultipartSpec is Base with multipart bodies.
func MultipartSpec(src Source) Spec { return Base(src).WithContentType(Multipart) }

// NoLog is Base with request/response logging disabled.
func NoLog(src Source) Spec { return Base(src).WithLogging(false) }

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s Spec) clone() Spec {
	s.headers = cloneMap(s.headers)
	s.query = cloneMap(s.query)
	return s
}

func (s Spec) WithBaseURL(baseURL string) Spec {
	s = s.clone()
	s.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return s
}

// WithHeader adds a default header. Names are canonicalized so later values replace earlier ones.
func (s Spec) WithHeader(name, value string) Spec {
	s = s.clone()
	if s.headers == nil {
		s.headers = map[string]string{}
	}
	s.headers[http.CanonicalHeaderKey(name)] = value
	return s
}

func (s Spec) WithHeaders(h map[string]string) Spec {
	for k, v := range h {
		s = s.WithHeader(k, v)
	}
	return s.clone()
}

func (s Spec) WithQueryParam(name, value string) Spec {
	s = s.clone()
	if s.query == nil {
		s.query = map[string]string{}
	}
	s.query[name] = value
	return s
}

func (s Spec) WithQueryParams(q map[string]string) Spec {
	for k, v := range q {
		s = s.WithQueryParam(k, v)
	}
	return s.clone()
}

func (s Spec) WithContentType(c ContentType) Spec {
	s = s.clone()
	s.contentType = c
	return s
}

// WithAccept overrides the Accept header; empty removes it.
func (s Spec) WithAccept(accept string) Spec {
	s = s.clone()
	s.accept = accept
	return s
}

func (s Spec) WithLogging(enabled bool) Spec {
	s = s.clone()
	s.logging = enabled
	return s
}

// WithAuth replaces the auth variant. Only one mechanism is active at a time.
func (s Spec) WithAuth(a auth.Auth) Spec {
	s = s.clone()
	s.auth = a
	return s
}

func (s Spec) WithBearer(token string) Spec { return s.WithAuth(auth.Bearer(token)) }

func (s Spec) WithBasicAuth(user, pass string) Spec { return s.WithAuth(auth.Basic(user, pass)) }

func (s Spec) WithAPIKey(header, value string) Spec { return s.WithAuth(auth.APIKey(header, value)) }

// WithoutAuth drops any auth variant.
func (s Spec) WithoutAuth() Spec { return s.WithAuth(auth.None()) }

func (s Spec) BaseURL() string          { return s.baseURL }
func (s Spec) ContentType() ContentType { return s.contentType }
func (s Spec) Accept() string           { return s.accept }
func (s Spec) Auth() auth.Auth          { return s.auth }
func (s Spec) LoggingEnabled() bool     { return s.logging }

// DefaultHeaders returns a copy of the headers set with WithHeader.
func (s Spec) DefaultHeaders() map[string]string {
	out := cloneMap(s.headers)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// QueryParams returns a copy of the default query parameters.
func (s Spec) QueryParams() map[string]string {
	out := cloneMap(s.query)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// Headers resolves the effective headers: content negotiation, then default
// headers, then the auth header. Multipart requests omit Content-Type so the
// transport can add the boundary.
func (s Spec) Headers() (map[string]string, error) {
	out := map[string]string{}
	if s.contentType != Multipart {
		out[constants.HeaderContentType] = s.contentType.MIME()
	}
	if s.accept != "" {
		out[constants.HeaderAccept] = s.accept
	}
	for k, v := range s.headers {
		out[k] = v
	}
	name, value, err := s.auth.Header()
	if err != nil {
		return nil, err
	}
	if name != "" {
		out[http.CanonicalHeaderKey(name)] = value
	}
	return out, nil
}

// Equal reports whether two specs carry the same values.
func (s Spec) Equal(o Spec) bool {
	if s.baseURL != o.baseURL || s.contentType != o.contentType || s.accept != o.accept ||
		s.logging != o.logging || s.auth != o.auth {
		return false
	}
	return mapsEqual(s.headers, o.headers) && mapsEqual(s.query, o.query)
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// String describes the spec without credential values.
func (s Spec) String() string {
	hs := make([]string, 0, len(s.headers))
	for k := range s.headers {
		hs = append(hs, k)
	}
	sort.Strings(hs)
	return "spec{" + s.baseURL + " " + s.contentType.String() + " auth=" + s.auth.String() +
		" headers=[" + strings.Join(hs, ",") + "]}"
}
