// Package apicontract wires configuration, the HTTP client, schema
// validation and test data into a Suite for contract tests against the
// reqres demo API.
package apicontract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hk1947/apicontract/internal/auth"
	"github.com/hk1947/apicontract/internal/client"
	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/config"
	"github.com/hk1947/apicontract/internal/datagen"
	"github.com/hk1947/apicontract/internal/expect"
	"github.com/hk1947/apicontract/internal/httpc"
	"github.com/hk1947/apicontract/internal/model"
	"github.com/hk1947/apicontract/internal/reqspec"
	"github.com/hk1947/apicontract/internal/schema"
)

// Re-export commonly used types for public API

type (
	Config      = config.Provider
	Client      = client.Client
	Response    = client.Response
	CallOption  = client.CallOption
	Spec        = reqspec.Spec
	Expectation = expect.Set
	Auth        = auth.Auth

	User             = model.User
	UserPage         = model.UserPage
	SingleUser       = model.SingleUser
	LoginRequest     = model.LoginRequest
	LoginResponse    = model.LoginResponse
	RegisterResponse = model.RegisterResponse
)

// Error sentinels, usable with errors.Is.
var (
	ErrTransport       = client.ErrTransport
	ErrDecode          = client.ErrDecode
	ErrMismatch        = expect.ErrMismatch
	ErrSchemaViolation = schema.ErrSchemaViolation
	ErrSchemaNotFound  = schema.ErrSchemaNotFound
)

// Per-call options.
var (
	PathParam  = client.PathParam
	QueryParam = client.QueryParam
	Header     = client.Header
	File       = client.File
)

// As decodes the response body into T.
func As[T any](r *Response) (T, error) { return client.As[T](r) }

// Suite is the per-test wiring of config, client, schemas and data. Its
// fields are safe to share between parallel tests.
type Suite struct {
	Config  *config.Provider
	Client  *client.Client
	Schemas *schema.Validator
	Data    *datagen.Generator
	Logger  *common.Logger
}

type suiteOptions struct {
	config     *config.Provider
	configOpts []config.Option
	overrides  map[string]string
	http       *resty.Client
	schemas    *schema.Validator
	seed       uint64
	logger     *common.Logger
}

type SuiteOption func(*suiteOptions)

// WithConfig uses an existing provider; config options are then ignored.
func WithConfig(p *config.Provider) SuiteOption {
	return func(o *suiteOptions) { o.config = p }
}

func WithConfigOptions(opts ...config.Option) SuiteOption {
	return func(o *suiteOptions) { o.configOpts = append(o.configOpts, opts...) }
}

// WithBaseURL overrides api.baseUrl.
func WithBaseURL(url string) SuiteOption {
	return WithOverride("api.baseUrl", url)
}

// WithOverride sets a highest-precedence config value.
func WithOverride(key, value string) SuiteOption {
	return func(o *suiteOptions) {
		if o.overrides == nil {
			o.overrides = map[string]string{}
		}
		o.overrides[key] = value
	}
}

func WithHTTPClient(c *resty.Client) SuiteOption {
	return func(o *suiteOptions) { o.http = c }
}

func WithSchemas(v *schema.Validator) SuiteOption {
	return func(o *suiteOptions) { o.schemas = v }
}

// WithSeed makes the data generator reproducible.
func WithSeed(seed uint64) SuiteOption {
	return func(o *suiteOptions) { o.seed = seed }
}

func WithLogger(l *common.Logger) SuiteOption {
	return func(o *suiteOptions) { o.logger = l }
}

// NewSuite loads configuration and builds the client from it. Credentials
// come from the config "auth" block when present, else from api.authToken.
func NewSuite(ctx context.Context, opts ...SuiteOption) (*Suite, error) {
	var o suiteOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.New(o.configOpts...)
	}
	for k, v := range o.overrides {
		cfg.Set(k, v)
	}
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("apicontract: %w", err)
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("apicontract: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logger = common.GetLogger()
	}
	logger = logger.WithEnvironment(cfg.Environment())

	hc := o.http
	if hc == nil {
		h := httpc.Httpc{
			Insecure:   settings.API.TLS.Insecure,
			MinVersion: settings.API.TLS.MinVersion,
			MaxVersion: settings.API.TLS.MaxVersion,
			Timeout:    cfg.Timeout(),
		}
		hc = h.New()
	}

	spec := reqspec.Base(cfg)
	a, err := configuredAuth(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("apicontract: auth: %w", err)
	}
	if !a.IsNone() {
		spec = spec.WithAuth(a)
	}

	schemas := o.schemas
	if schemas == nil {
		schemas = schema.Default()
	}

	s := &Suite{
		Config:  cfg,
		Client:  client.New(spec, client.WithHTTPClient(hc), client.WithLogger(logger)),
		Schemas: schemas,
		Data:    datagen.NewSeeded(o.seed),
		Logger:  logger.WithComponent("suite"),
	}
	s.Logger.Debug("suite ready", "base_url", spec.BaseURL(), "auth", a.Kind().String())
	return s, nil
}

func configuredAuth(ctx context.Context, cfg *config.Provider) (auth.Auth, error) {
	if block := cfg.Section("auth"); len(block) > 0 {
		return auth.FromMap(ctx, block)
	}
	if tok := cfg.AuthToken(); tok != "" {
		return auth.Bearer(tok), nil
	}
	return auth.None(), nil
}

// AuthenticatedClient layers a bearer token onto the suite's client.
func (s *Suite) AuthenticatedClient(token string) *client.Client {
	return s.Client.WithBearer(token)
}

// Conf reads a config value, def when unset.
func (s *Suite) Conf(key, def string) string { return s.Config.GetString(key, def) }

// MaxLatency is the configured response-time budget.
func (s *Suite) MaxLatency() time.Duration { return s.Config.MaxLatency() }

// Within is a latency expectation using the configured budget.
func (s *Suite) Within() expect.Set { return expect.Within(s.MaxLatency()) }

// FormClient sends urlencoded bodies with the suite's headers and auth.
func (s *Suite) FormClient() *client.Client {
	return s.Client.WithSpec(s.Client.Spec().WithContentType(reqspec.Form))
}

// MultipartClient sends multipart bodies with the suite's headers and auth.
func (s *Suite) MultipartClient() *client.Client {
	return s.Client.WithSpec(s.Client.Spec().WithContentType(reqspec.Multipart))
}

// Login posts credentials and returns the issued token. A rejected login
// is an error carrying the service's message.
func (s *Suite) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	resp, err := s.Client.Post(ctx, "/login", req)
	if err != nil {
		return "", err
	}
	out, err := client.As[model.LoginResponse](resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK || !out.IsSuccess() {
		if out.IsFailed() {
			return "", fmt.Errorf("apicontract: login rejected (%d): %s", resp.StatusCode(), out.GetError())
		}
		return "", errors.New("apicontract: login returned no token")
	}
	return out.GetToken(), nil
}

// Check applies expectations and, when schemaName is set, schema validation.
// Every failure is returned, joined.
func (s *Suite) Check(resp *client.Response, set expect.Set, schemaName string) error {
	var errs []error
	if err := resp.Expect(set); err != nil {
		errs = append(errs, err)
	}
	if schemaName != "" && resp != nil {
		if err := s.Schemas.ValidateResponse(resp, schemaName); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
