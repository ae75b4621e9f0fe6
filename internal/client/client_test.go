package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hk1947/apicontract/internal/expect"
	"github.com/hk1947/apicontract/internal/reqspec"
)

type echo struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       map[string]string `json:"query"`
	Headers     map[string]string `json:"headers"`
	ContentType string            `json:"content_type"`
	Body        string            `json:"body"`
	Form        map[string]string `json:"form,omitempty"`
	Files       map[string]string `json:"files,omitempty"`
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := echo{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       map[string]string{},
			Headers:     map[string]string{},
			ContentType: r.Header.Get("Content-Type"),
		}
		for k := range r.URL.Query() {
			e.Query[k] = r.URL.Query().Get(k)
		}
		for k := range r.Header {
			e.Headers[k] = r.Header.Get(k)
		}
		switch {
		case strings.HasPrefix(e.ContentType, "multipart/form-data"):
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				e.Form = map[string]string{}
				for k := range r.MultipartForm.Value {
					e.Form[k] = r.MultipartForm.Value[k][0]
				}
				e.Files = map[string]string{}
				for k, fhs := range r.MultipartForm.File {
					f, _ := fhs[0].Open()
					b, _ := io.ReadAll(f)
					_ = f.Close()
					e.Files[k] = fhs[0].Filename + ":" + string(b)
				}
			}
		case strings.HasPrefix(e.ContentType, "application/x-www-form-urlencoded"):
			_ = r.ParseForm()
			e.Form = map[string]string{}
			for k := range r.PostForm {
				e.Form[k] = r.PostForm.Get(k)
			}
		default:
			b, _ := io.ReadAll(r.Body)
			e.Body = string(b)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_ = json.NewEncoder(w).Encode(e)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetWithParams(t *testing.T) {
	srv := echoServer(t)
	c := New(reqspec.New(srv.URL).WithQueryParam("page", "1").WithHeader("X-Default", "d"))

	resp, err := c.Get(context.Background(), "/users/{id}",
		PathParam("id", 2),
		QueryParam("page", 3),
		QueryParams(map[string]any{"delay": 0.5}),
		Header("x-default", "override"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := resp.Expect(expect.OK()); err != nil {
		t.Fatalf("expect: %v", err)
	}
	e, err := As[echo](resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Method != http.MethodGet || e.Path != "/users/2" {
		t.Fatalf("unexpected request line: %s %s", e.Method, e.Path)
	}
	if e.Query["page"] != "3" || e.Query["delay"] != "0.5" {
		t.Fatalf("per-call query should override spec: %v", e.Query)
	}
	if e.Headers["X-Default"] != "override" {
		t.Fatalf("per-call header should override spec: %v", e.Headers)
	}
	if e.Headers["Accept"] != "application/json" {
		t.Fatalf("accept header missing: %v", e.Headers)
	}
	if resp.Method() != http.MethodGet || !strings.HasSuffix(resp.URL(), "/users/2?delay=0.5&page=3") {
		t.Fatalf("unexpected method/url: %s %s", resp.Method(), resp.URL())
	}
	if resp.Elapsed() <= 0 {
		t.Fatalf("elapsed should be recorded")
	}
}

func TestClient_PathParamsAndSpecQuery(t *testing.T) {
	srv := echoServer(t)
	spec := reqspec.New(srv.URL).WithQueryParams(map[string]string{"per_page": "6", "page": "1"})
	resp, err := New(spec).Get(context.Background(), "/{resource}/{id}",
		PathParams(map[string]any{"resource": "users", "id": int64(7)}))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	e, err := As[echo](resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Path != "/users/7" {
		t.Fatalf("path params not applied: %s", e.Path)
	}
	if e.Query["per_page"] != "6" || e.Query["page"] != "1" {
		t.Fatalf("spec query params not sent: %v", e.Query)
	}
}

func TestClient_PostJSONBodies(t *testing.T) {
	srv := echoServer(t)
	c := New(reqspec.New(srv.URL))

	type payload struct {
		Name string  `json:"name"`
		Job  *string `json:"job,omitempty"`
	}
	cases := []struct {
		body any
		want string
	}{
		{payload{Name: "Harsha Kumar"}, `{"name":"Harsha Kumar"}`},
		{[]byte(`{"raw":true}`), `{"raw":true}`},
		{`{"s":1}`, `{"s":1}`},
		{json.RawMessage(`[1,2]`), `[1,2]`},
		{strings.NewReader(`{"r":1}`), `{"r":1}`},
	}
	for i, tc := range cases {
		resp, err := c.Post(context.Background(), "users", tc.body)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		e, _ := As[echo](resp)
		if e.Body != tc.want || !strings.HasPrefix(e.ContentType, "application/json") {
			t.Fatalf("case %d: body %q content-type %q", i, e.Body, e.ContentType)
		}
	}
}

func TestClient_VerbsHitServer(t *testing.T) {
	srv := echoServer(t)
	c := New(reqspec.New(srv.URL))
	ctx := context.Background()
	calls := map[string]func() (*Response, error){
		http.MethodPut:    func() (*Response, error) { return c.Put(ctx, "/users/2", map[string]string{"a": "b"}) },
		http.MethodPatch:  func() (*Response, error) { return c.Patch(ctx, "/users/2", map[string]string{"a": "b"}) },
		http.MethodDelete: func() (*Response, error) { return c.Delete(ctx, "/users/2") },
	}
	for method, fn := range calls {
		resp, err := fn()
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if got := resp.Path("method").String(); got != method {
			t.Fatalf("%s: server saw %s", method, got)
		}
	}
}

func TestClient_FormBody(t *testing.T) {
	srv := echoServer(t)
	c := New(reqspec.New(srv.URL).WithContentType(reqspec.Form))

	job := "SDET"
	resp, err := c.Post(context.Background(), "/login", struct {
		Email string  `json:"email"`
		Job   *string `json:"job,omitempty"`
		Skip  *string `json:"skip,omitempty"`
		Age   int     `json:"age"`
	}{Email: "eve.holt@reqres.in", Job: &job, Age: 30})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	e, _ := As[echo](resp)
	if !strings.HasPrefix(e.ContentType, "application/x-www-form-urlencoded") {
		t.Fatalf("content type: %q", e.ContentType)
	}
	if e.Form["email"] != "eve.holt@reqres.in" || e.Form["job"] != "SDET" || e.Form["age"] != "30" {
		t.Fatalf("form fields: %v", e.Form)
	}
	if _, ok := e.Form["skip"]; ok {
		t.Fatalf("nil fields must be dropped: %v", e.Form)
	}
}

func TestClient_MultipartWithFile(t *testing.T) {
	srv := echoServer(t)
	c := New(reqspec.New(srv.URL))

	resp, err := c.Post(context.Background(), "/upload", map[string]any{"name": "avatar"},
		File("file", "a.txt", strings.NewReader("hello")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	e, _ := As[echo](resp)
	if !strings.HasPrefix(e.ContentType, "multipart/form-data") {
		t.Fatalf("content type: %q", e.ContentType)
	}
	if e.Form["name"] != "avatar" || e.Files["file"] != "a.txt:hello" {
		t.Fatalf("multipart parts: %v %v", e.Form, e.Files)
	}
}

func TestClient_AuthOverlays(t *testing.T) {
	srv := echoServer(t)
	base := New(reqspec.New(srv.URL))
	ctx := context.Background()

	bearer := base.WithBearer("tok")
	basic := base.WithBasicAuth("alice", "secret")
	key := base.WithAPIKey("x-api-key", "k")

	for name, tc := range map[string]struct {
		c      *Client
		header string
		want   string
	}{
		"bearer": {bearer, "Authorization", "Bearer tok"},
		"basic":  {basic, "Authorization", "Basic YWxpY2U6c2VjcmV0"},
		"apikey": {key, "X-Api-Key", "k"},
	} {
		resp, err := tc.c.Get(ctx, "/")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := resp.Path("headers." + tc.header).String(); got != tc.want {
			t.Fatalf("%s: header %s = %q", name, tc.header, got)
		}
	}

	resp, _ := base.Get(ctx, "/")
	if resp.Path("headers.Authorization").Exists() {
		t.Fatalf("base client must stay unauthenticated")
	}
	if base.HTTP() != bearer.HTTP() {
		t.Fatalf("derived clients should share the transport")
	}
}

func TestClient_WithHeaderDoesNotLeak(t *testing.T) {
	srv := echoServer(t)
	base := New(reqspec.New(srv.URL))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := strings.Repeat("x", i+1)
			resp, err := base.WithHeader("X-Worker", v).WithQueryParam("w", v).Get(ctx, "/")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			if resp.Path("headers.X-Worker").String() != v || resp.Path("query.w").String() != v {
				t.Errorf("worker %d saw another worker's overlay", i)
			}
		}(i)
	}
	wg.Wait()

	if len(base.Spec().DefaultHeaders()) != 0 {
		t.Fatalf("base spec mutated: %v", base.Spec().DefaultHeaders())
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(reqspec.New(url)).Get(context.Background(), "/users")
	var te *TransportError
	if !errors.As(err, &te) || !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.Method != http.MethodGet || !strings.HasSuffix(te.URL, "/users") {
		t.Fatalf("unexpected transport error fields: %+v", te)
	}
}

func TestClient_InvalidAuthFailsBeforeSending(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	_, err := New(reqspec.New(srv.URL)).WithBasicAuth("", "").Get(context.Background(), "/")
	if err == nil || hits != 0 {
		t.Fatalf("expected local error and no request, err=%v hits=%d", err, hits)
	}
}

func TestClient_NonSuccessIsNotAnError(t *testing.T) {
	srv := echoServer(t)
	resp, err := New(reqspec.New(srv.URL)).Get(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("4xx must be returned as a response: %v", err)
	}
	if err := resp.Expect(expect.NotFound()); err != nil {
		t.Fatalf("expect: %v", err)
	}
}

func TestClient_TLSConfig(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	if _, err := New(reqspec.New(srv.URL)).Get(context.Background(), "/"); err == nil {
		t.Fatalf("self-signed certificate should be rejected by default")
	}

	c := New(reqspec.New(srv.URL), WithTLSConfig(&tls.Config{InsecureSkipVerify: true}), WithTimeout(5*time.Second))
	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !resp.Path("ok").Bool() {
		t.Fatalf("unexpected body: %s", resp.String())
	}
}
