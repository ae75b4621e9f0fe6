// Package config implements the layered configuration provider.
//
// Layers, lowest to highest precedence:
//
//	<base>.yaml  <  <base>-<env>.yaml  <  <PREFIX>_<KEY> environment variables  <  overrides
//
// Nested documents are flattened into dotted, case-insensitive keys
// (api.baseUrl, api.logging.enabled). The store is loaded on first access
// and can be reloaded; overrides survive a reload and are consulted on every
// lookup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/constants"
	"github.com/hk1947/apicontract/internal/resources"
	"github.com/hk1947/apicontract/internal/util"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Provider is the configuration store. Construct one with New and pass it to
// the components that need it; the zero value is not usable.
type Provider struct {
	fsys      fs.FS
	dir       string
	baseName  string
	envPrefix string
	lookupEnv func(string) (string, bool)
	environ   func() []string

	mu      sync.RWMutex
	v       *viper.Viper // nil until loaded
	env     string
	loadErr error

	omu       sync.RWMutex
	overrides map[string]string
}

// Option configures a Provider.
type Option func(*Provider)

// WithFS reads config documents from dir inside fsys.
func WithFS(fsys fs.FS, dir string) Option {
	return func(p *Provider) {
		p.fsys = fsys
		p.dir = dir
	}
}

// WithDir reads config documents from a directory on disk.
func WithDir(dir string) Option {
	return WithFS(os.DirFS(dir), ".")
}

// WithBaseName changes the document base name (default api-config).
func WithBaseName(name string) Option {
	return func(p *Provider) { p.baseName = name }
}

// WithEnvironment pins the environment name, taking precedence over the ENV variable.
func WithEnvironment(env string) Option {
	return func(p *Provider) {
		if e, ok := util.TrimEmptyCheck(env); ok {
			p.overrides[constants.EnvironmentKey] = e
		}
	}
}

// WithOverrides installs process-level overrides (highest precedence).
func WithOverrides(m map[string]string) Option {
	return func(p *Provider) {
		for k, v := range m {
			p.overrides[normalizeKey(k)] = v
		}
	}
}

// WithEnvPrefix sets the prefix for environment variable lookups (default APICONTRACT).
func WithEnvPrefix(prefix string) Option {
	return func(p *Provider) { p.envPrefix = prefix }
}

// withLookupEnv replaces os.LookupEnv; used by tests.
func withLookupEnv(fn func(string) (string, bool)) Option {
	return func(p *Provider) { p.lookupEnv = fn }
}

// withEnviron replaces os.Environ; used by tests.
func withEnviron(fn func() []string) Option {
	return func(p *Provider) { p.environ = fn }
}

// New returns an unloaded Provider. Documents are read on first access.
func New(opts ...Option) *Provider {
	p := &Provider{
		fsys:      resources.FS,
		dir:       constants.ConfigDir,
		baseName:  constants.ConfigBaseName,
		envPrefix: constants.DefaultEnvPrefix,
		lookupEnv: os.LookupEnv,
		environ:   os.Environ,
		overrides: map[string]string{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func normalizeKey(k string) string { return util.TrimAndLower(k) }

// Load loads the store if it is not loaded yet and reports the load error, if any.
func (p *Provider) Load() error {
	p.store()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadErr
}

// Reload discards the loaded layers and reads them again. Overrides are kept.
func (p *Provider) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v, p.env, p.loadErr = p.load()
	common.GetLogger().WithComponent("config").Info("configuration reloaded", "env", p.env)
	return p.loadErr
}

func (p *Provider) store() *viper.Viper {
	p.mu.RLock()
	v := p.v
	p.mu.RUnlock()
	if v != nil {
		return v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.v == nil {
		p.v, p.env, p.loadErr = p.load()
		if p.loadErr != nil {
			common.LogError("configuration load failed", p.loadErr, "env", p.env)
		}
	}
	return p.v
}

func (p *Provider) resolveEnvironment() string {
	if e, ok := p.override(constants.EnvironmentKey); ok && strings.TrimSpace(e) != "" {
		return strings.TrimSpace(e)
	}
	if e, ok := p.lookupEnv(constants.EnvironmentVar); ok && strings.TrimSpace(e) != "" {
		return strings.TrimSpace(e)
	}
	return constants.DefaultEnvironment
}

// load builds a fresh viper instance. It always returns a usable store, even
// when a layer fails to parse.
func (p *Provider) load() (*viper.Viper, string, error) {
	logger := common.GetLogger().WithComponent("config")
	env := p.resolveEnvironment()

	v := viper.New()
	v.SetConfigType("yaml")
	if p.envPrefix != "" {
		v.SetEnvPrefix(p.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}

	var errs []error
	for _, name := range []string{
		p.baseName + constants.ConfigExt,
		p.baseName + "-" + env + constants.ConfigExt,
	} {
		file := path.Join(p.dir, name)
		data, err := fs.ReadFile(p.fsys, file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Warn("config file not found", "file", file)
				continue
			}
			errs = append(errs, fmt.Errorf("config: read %s: %w", file, err))
			continue
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			errs = append(errs, fmt.Errorf("config: parse %s: %w", file, err))
			continue
		}
		logger.Debug("loaded config", "file", file)
	}

	p.bindEnvKeys(v)

	logger.Info("configuration initialized", "env", env, "keys", len(v.AllKeys()))
	return v, env, errors.Join(errs...)
}

// bindEnvKeys binds prefixed variables whose key no document declares, so
// env-only keys show up in Keys and Section. A variable maps to at most three
// segments: APICONTRACT_AUTH_CONFIG_CLIENT_SECRET is auth.config.client_secret.
func (p *Provider) bindEnvKeys(v *viper.Viper) {
	if p.envPrefix == "" || p.environ == nil {
		return
	}
	prefix := strings.ToUpper(p.envPrefix) + "_"
	known := map[string]struct{}{}
	for _, k := range v.AllKeys() {
		known[envForm(k)] = struct{}{}
	}
	for _, kv := range p.environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := strings.ToLower(strings.TrimPrefix(name, prefix))
		if _, dup := known[suffix]; dup {
			continue
		}
		key, ok := envKey(suffix)
		if !ok {
			continue
		}
		_ = v.BindEnv(key, name)
		known[suffix] = struct{}{}
	}
}

func envForm(key string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(key)
}

func envKey(suffix string) (string, bool) {
	segs := strings.SplitN(suffix, "_", 3)
	for _, s := range segs {
		if s == "" {
			return "", false
		}
	}
	return strings.Join(segs, "."), true
}

func (p *Provider) override(key string) (string, bool) {
	p.omu.RLock()
	defer p.omu.RUnlock()
	v, ok := p.overrides[normalizeKey(key)]
	return v, ok
}

// Set installs a process-level override. It is visible to the next Get without a reload.
func (p *Provider) Set(key, value string) {
	p.omu.Lock()
	p.overrides[normalizeKey(key)] = value
	p.omu.Unlock()
}

// Unset removes a process-level override.
func (p *Provider) Unset(key string) {
	p.omu.Lock()
	delete(p.overrides, normalizeKey(key))
	p.omu.Unlock()
}

// raw returns the uncoerced value for key.
func (p *Provider) raw(key string) (any, bool) {
	if v, ok := p.override(key); ok {
		return v, true
	}
	s := p.store()
	k := normalizeKey(key)
	if !s.IsSet(k) {
		return nil, false
	}
	val := s.Get(k)
	if val == nil {
		return nil, false
	}
	return val, true
}

// Get returns the value for key as a string.
func (p *Provider) Get(key string) (string, bool) {
	val, ok := p.raw(key)
	if !ok {
		return "", false
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return fmt.Sprint(val), true
	}
	return s, true
}

// GetString returns the value for key or def when absent.
func (p *Provider) GetString(key, def string) string {
	if v, ok := p.Get(key); ok {
		return v
	}
	return def
}

// GetInt returns the value for key as an int, or def when absent or not numeric.
func (p *Provider) GetInt(key string, def int) int {
	val, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(val)
	if err != nil {
		common.LogWarn("config value is not an integer", "key", key, "value", val)
		return def
	}
	return n
}

// GetBool returns the value for key as a bool, or def when absent or not a bool.
func (p *Provider) GetBool(key string, def bool) bool {
	val, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(val)
	if err != nil {
		common.LogWarn("config value is not a boolean", "key", key, "value", val)
		return def
	}
	return b
}

// GetDuration reads a duration. Bare numbers are milliseconds, strings use
// time.ParseDuration syntax ("1500ms", "5s").
func (p *Provider) GetDuration(key string, def time.Duration) time.Duration {
	val, ok := p.raw(key)
	if !ok {
		return def
	}
	if d, ok := toDuration(val); ok {
		return d
	}
	common.LogWarn("config value is not a duration", "key", key, "value", val)
	return def
}

func toDuration(val any) (time.Duration, bool) {
	switch t := val.(type) {
	case time.Duration:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, true
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
	default:
		if ms, err := cast.ToInt64E(t); err == nil {
			return time.Duration(ms) * time.Millisecond, true
		}
	}
	return 0, false
}

func parseDuration(s string, def time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return def
	}
	if d, ok := toDuration(s); ok {
		return d
	}
	return def
}

// Keys returns every flattened key known to the store, overrides included, sorted.
func (p *Provider) Keys() []string {
	seen := map[string]struct{}{}
	for _, k := range p.store().AllKeys() {
		seen[k] = struct{}{}
	}
	p.omu.RLock()
	for k := range p.overrides {
		seen[k] = struct{}{}
	}
	p.omu.RUnlock()

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Environment returns the environment name chosen at load time.
func (p *Provider) Environment() string {
	p.store()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.env
}

// API-specific accessors.

func (p *Provider) BaseURL() string {
	return p.GetString("api.baseUrl", constants.DefaultBaseURL)
}

func (p *Provider) Timeout() time.Duration {
	return p.GetDuration("api.timeout", constants.DefaultTimeout)
}

func (p *Provider) APIKey() string {
	return p.GetString("api.key", "")
}

func (p *Provider) APIKeyHeader() string {
	return util.TrimWithDefault(p.GetString("api.keyHeader", ""), constants.DefaultAPIKeyHeader)
}

func (p *Provider) AuthToken() string {
	return p.GetString("api.authToken", "")
}

func (p *Provider) LoggingEnabled() bool {
	return p.GetBool("api.logging.enabled", true)
}

// MaxLatency is the response-time budget for latency presets.
func (p *Provider) MaxLatency() time.Duration {
	return p.GetDuration("expect.maxLatency", constants.DefaultMaxLatency)
}
