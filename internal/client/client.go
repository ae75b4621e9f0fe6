// Package client sends single-shot HTTP calls shaped by a reqspec.Spec and
// returns detached Response snapshots. There are no retries: a network
// failure surfaces as *TransportError for that call.
package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hk1947/apicontract/internal/auth"
	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/httpc"
	"github.com/hk1947/apicontract/internal/reqspec"
	"github.com/hk1947/apicontract/internal/util"
)

// Client holds one request spec. With methods return new Clients that share
// the underlying resty client, which is safe for concurrent use.
type Client struct {
	spec   reqspec.Spec
	http   *resty.Client
	logger *common.Logger
}

type options struct {
	http    *resty.Client
	tls     *tls.Config
	timeout time.Duration
	logger  *common.Logger
}

// Option configures New.
type Option func(*options)

// WithHTTPClient uses an existing resty client; TLS and timeout options are then ignored.
func WithHTTPClient(c *resty.Client) Option { return func(o *options) { o.http = c } }

func WithTLSConfig(cfg *tls.Config) Option { return func(o *options) { o.tls = cfg } }

func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func WithLogger(l *common.Logger) Option { return func(o *options) { o.logger = l } }

// New returns a Client for spec.
func New(spec reqspec.Spec, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	hc := o.http
	if hc == nil {
		h := httpc.Httpc{TlsConfig: o.tls, Timeout: o.timeout}
		hc = h.New()
	}
	logger := o.logger
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Client{spec: spec, http: hc, logger: logger.WithComponent("client")}
}

func (c *Client) Spec() reqspec.Spec { return c.spec }

// HTTP exposes the shared resty client.
func (c *Client) HTTP() *resty.Client { return c.http }

// WithSpec returns a Client carrying spec and sharing c's transport.
func (c *Client) WithSpec(spec reqspec.Spec) *Client {
	return &Client{spec: spec, http: c.http, logger: c.logger}
}

func (c *Client) WithHeader(name, value string) *Client {
	return c.WithSpec(c.spec.WithHeader(name, value))
}

func (c *Client) WithHeaders(h map[string]string) *Client {
	return c.WithSpec(c.spec.WithHeaders(h))
}

func (c *Client) WithQueryParam(name, value string) *Client {
	return c.WithSpec(c.spec.WithQueryParam(name, value))
}

func (c *Client) WithAuth(a auth.Auth) *Client { return c.WithSpec(c.spec.WithAuth(a)) }

func (c *Client) WithBearer(token string) *Client { return c.WithSpec(c.spec.WithBearer(token)) }

func (c *Client) WithBasicAuth(user, pass string) *Client {
	return c.WithSpec(c.spec.WithBasicAuth(user, pass))
}

func (c *Client) WithAPIKey(header, value string) *Client {
	return c.WithSpec(c.spec.WithAPIKey(header, value))
}

func (c *Client) Get(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil, opts...)
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, opts...)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, body, opts...)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, endpoint, body, opts...)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...CallOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, endpoint, body, opts...)
}

// Do performs exactly one HTTP call. Per-call headers and query parameters
// override the spec's defaults.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...CallOption) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cl := newCall()
	for _, opt := range opts {
		opt(cl)
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	url := util.JoinURL(c.spec.BaseURL(), endpoint)

	hdrs, err := c.spec.Headers()
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, url, err)
	}
	req := c.http.R().
		SetContext(ctx).
		SetHeaders(hdrs).
		SetQueryParams(c.spec.QueryParams()).
		SetQueryParams(cl.query).
		SetHeaders(cl.headers).
		SetPathParams(cl.pathParams)

	payload, err := c.setBody(req, body, cl.files)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, url, err)
	}

	log := c.logger.WithRequest(method, url)
	if c.spec.LoggingEnabled() {
		log.Debug("request",
			"headers", common.GetGlobalMasker().MaskHeaders(req.Header),
			"query", req.QueryParam.Encode(),
			"body", common.MaskSensitiveData(payload))
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		if c.spec.LoggingEnabled() {
			log.Error("request failed", "error", err)
		}
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	r := newResponse(resp, method, url)
	if c.spec.LoggingEnabled() {
		log.Info("response", "status", r.StatusCode(), "elapsed", r.Elapsed())
		log.Debug("response body",
			"headers", common.GetGlobalMasker().MaskHeaders(r.Header()),
			"body", common.MaskSensitiveData(r.String()))
	}
	return r, nil
}

// setBody encodes body according to the spec's content type and returns a
// printable rendition for logging.
func (c *Client) setBody(req *resty.Request, body any, files []fileField) (string, error) {
	ct := c.spec.ContentType()
	if len(files) > 0 {
		ct = reqspec.Multipart
	}
	if body == nil && len(files) == 0 {
		return "", nil
	}

	switch ct {
	case reqspec.Form:
		fields, err := formFields(body)
		if err != nil {
			return "", err
		}
		req.SetFormData(fields)
		return fmt.Sprint(fields), nil
	case reqspec.Multipart:
		fields, err := formFields(body)
		if err != nil {
			return "", err
		}
		// the transport writes the boundary-bearing Content-Type
		req.Header.Del("Content-Type")
		req.SetMultipartFormData(fields)
		for _, f := range files {
			req.SetFileReader(f.param, f.name, f.r)
		}
		return fmt.Sprint(fields), nil
	default:
		raw, err := jsonBody(body)
		if err != nil {
			return "", err
		}
		req.SetBody(raw)
		return string(raw), nil
	}
}

func jsonBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		return io.ReadAll(b)
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		return raw, nil
	}
}
