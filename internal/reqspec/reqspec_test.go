package reqspec

import (
	"strings"
	"testing"

	"github.com/hk1947/apicontract/internal/auth"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type fakeSource struct {
	base    string
	logging bool
	key     string
	header  string
}

func (f fakeSource) BaseURL() string      { return f.base }
func (f fakeSource) LoggingEnabled() bool { return f.logging }
func (f fakeSource) APIKey() string       { return f.key }
func (f fakeSource) APIKeyHeader() string { return f.header }

func TestBase_FromSource(t *testing.T) {
	s := Base(fakeSource{base: "https://reqres.in/api/", logging: true, key: "k", header: "x-api-key"})
	if s.BaseURL() != "https://reqres.in/api" {
		t.Fatalf("trailing slash should be trimmed: %q", s.BaseURL())
	}
	if !s.LoggingEnabled() {
		t.Fatalf("logging flag not carried")
	}
	if s.ContentType() != JSON || s.Accept() != "application/json" {
		t.Fatalf("base spec should negotiate JSON")
	}
	h, err := s.Headers()
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if h["X-Api-Key"] != "k" {
		t.Fatalf("api key overlay missing: %v", h)
	}
	if h["Content-Type"] != "application/json" || h["Accept"] != "application/json" {
		t.Fatalf("content negotiation headers missing: %v", h)
	}

	withToken, err := s.WithBearer("tok").Headers()
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if withToken["X-Api-Key"] != "k" || withToken["Authorization"] != "Bearer tok" {
		t.Fatalf("bearer overlay should keep the api key header: %v", withToken)
	}
}

func TestBase_NoAPIKey(t *testing.T) {
	s := Base(fakeSource{base: "http://x"})
	if !s.Auth().IsNone() {
		t.Fatalf("no key configured, expected no auth: %v", s.Auth())
	}
}

func TestPresets(t *testing.T) {
	src := fakeSource{base: "http://x", logging: true}
	if FormSpec(src).ContentType() != Form {
		t.Fatalf("FormSpec content type")
	}
	m := MultipartSpec(src)
	h, _ := m.Headers()
	if _, ok := h["Content-Type"]; ok {
		t.Fatalf("multipart must leave Content-Type to the transport: %v", h)
	}
	if NoLog(src).LoggingEnabled() {
		t.Fatalf("NoLog should disable logging")
	}
}

func TestOverlaysDoNotMutateReceiver(t *testing.T) {
	base := New("http://x").WithHeader("X-Trace", "1").WithQueryParam("page", "1")
	snapshot := base.DefaultHeaders()

	derived := base.WithHeader("X-Trace", "2").WithHeader("X-Other", "y").WithQueryParam("page", "2").WithBearer("t")
	if got := base.DefaultHeaders(); got["X-Trace"] != "1" || len(got) != len(snapshot) {
		t.Fatalf("base headers mutated: %v", got)
	}
	if got := base.QueryParams(); got["page"] != "1" {
		t.Fatalf("base query mutated: %v", got)
	}
	if !base.Auth().IsNone() {
		t.Fatalf("base auth mutated")
	}
	if derived.DefaultHeaders()["X-Trace"] != "2" || derived.QueryParams()["page"] != "2" {
		t.Fatalf("derived spec missing overrides")
	}

	// accessor copies must not leak into the spec
	h := derived.DefaultHeaders()
	h["X-Trace"] = "tampered"
	if derived.DefaultHeaders()["X-Trace"] != "2" {
		t.Fatalf("DefaultHeaders returned an alias")
	}
}

func TestHeaders_AuthWinsOverDefaults(t *testing.T) {
	s := New("http://x").WithHeader("authorization", "Token manual").WithBearer("abc")
	h, err := s.Headers()
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if h["Authorization"] != "Bearer abc" {
		t.Fatalf("auth header should win: %v", h)
	}
}

func TestHeaders_AuthError(t *testing.T) {
	if _, err := New("http://x").WithBasicAuth("", "").Headers(); err == nil {
		t.Fatalf("expected basic auth validation error")
	}
}

func TestWithAuth_ReplacesMechanism(t *testing.T) {
	s := New("http://x").WithBearer("a").WithAPIKey("X-K", "v")
	if s.Auth().Kind() != auth.KindAPIKey {
		t.Fatalf("latest auth overlay should win: %v", s.Auth())
	}
	if !s.WithoutAuth().Auth().IsNone() {
		t.Fatalf("WithoutAuth")
	}
}

func TestString_HidesSecrets(t *testing.T) {
	s := New("http://x").WithBearer("top-secret").String()
	if strings.Contains(s, "top-secret") {
		t.Fatalf("String leaked token: %s", s)
	}
}

// Two auth variants built from one base keep every non-auth field equal to the base.
func TestProperty_AuthOverlayKeepsBase(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("auth overlays leave base untouched", prop.ForAll(
		func(hv, token, user, pass string, logging bool) bool {
			base := New("http://api.local").WithHeader("X-Req", hv).WithLogging(logging)
			before := base.WithHeaders(nil)

			a := base.WithBearer(token)
			b := base.WithBasicAuth(user, pass)

			if !base.Equal(before) {
				return false
			}
			for _, d := range []Spec{a, b} {
				if d.BaseURL() != base.BaseURL() || d.ContentType() != base.ContentType() ||
					d.LoggingEnabled() != base.LoggingEnabled() || d.Accept() != base.Accept() {
					return false
				}
				if !mapsEqual(d.DefaultHeaders(), base.DefaultHeaders()) {
					return false
				}
			}
			return a.WithoutAuth().Equal(base) && b.WithoutAuth().Equal(base)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
