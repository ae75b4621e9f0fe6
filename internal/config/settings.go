package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hk1947/apicontract/internal/constants"
	"github.com/spf13/viper"
)

// Settings is the typed view of the store.
type Settings struct {
	API     APISettings     `mapstructure:"api" yaml:"api"`
	Expect  ExpectSettings  `mapstructure:"expect" yaml:"expect"`
	Logging LoggingSettings `mapstructure:"logging" yaml:"logging"`
}

type APISettings struct {
	BaseURL   string `mapstructure:"baseUrl" yaml:"baseUrl"`
	Timeout   string `mapstructure:"timeout" yaml:"timeout"` // milliseconds or a duration string
	Key       string `mapstructure:"key" yaml:"key"`
	KeyHeader string `mapstructure:"keyHeader" yaml:"keyHeader"`
	AuthToken string `mapstructure:"authToken" yaml:"authToken"`
	Logging   struct {
		Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	} `mapstructure:"logging" yaml:"logging"`
	TLS TLSSettings `mapstructure:"tls" yaml:"tls"`
}

// TLSSettings mirrors httpc.Httpc: versions are "1.0".."1.3", empty means library default.
type TLSSettings struct {
	Insecure   bool   `mapstructure:"insecure" yaml:"insecure"`
	MinVersion string `mapstructure:"minVersion" yaml:"minVersion"`
	MaxVersion string `mapstructure:"maxVersion" yaml:"maxVersion"`
}

type ExpectSettings struct {
	MaxLatency string `mapstructure:"maxLatency" yaml:"maxLatency"`
}

type LoggingSettings struct {
	Level         string `mapstructure:"level" yaml:"level"`
	Format        string `mapstructure:"format" yaml:"format"`
	Color         *bool  `mapstructure:"color" yaml:"color,omitempty"`
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive,omitempty"`
}

// MaskEnabled defaults to true when unset.
func (l LoggingSettings) MaskEnabled() bool {
	return l.MaskSensitive == nil || *l.MaskSensitive
}

// Settings decodes every key (all layers plus overrides) into a Settings value.
func (p *Provider) Settings() (Settings, error) {
	v, err := p.snapshot("")
	if err != nil {
		return Settings{}, err
	}
	v.SetDefault("api.baseUrl", constants.DefaultBaseURL)
	v.SetDefault("api.keyHeader", constants.DefaultAPIKeyHeader)
	v.SetDefault("api.timeout", fmt.Sprint(constants.DefaultTimeout.Milliseconds()))
	v.SetDefault("api.logging.enabled", true)
	v.SetDefault("expect.maxLatency", constants.DefaultMaxLatency.String())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config: decode settings: %w", err)
	}
	return s, nil
}

// Section returns the keys under prefix as a nested map, or nil when none exist.
// It is used to hand a block such as "auth" to a decoder.
func (p *Provider) Section(prefix string) map[string]any {
	prefix = normalizeKey(prefix)
	v, err := p.snapshot(prefix)
	if err != nil || len(v.AllKeys()) == 0 {
		return nil
	}
	sub := v.Sub(prefix)
	if sub == nil {
		return nil
	}
	return sub.AllSettings()
}

// AllSettings returns the effective store as a nested map.
func (p *Provider) AllSettings() map[string]any {
	v, err := p.snapshot("")
	if err != nil {
		return map[string]any{}
	}
	return v.AllSettings()
}

// snapshot copies the effective value of every key (optionally limited to
// prefix) into a detached viper instance.
func (p *Provider) snapshot(prefix string) (*viper.Viper, error) {
	if err := p.Load(); err != nil {
		return nil, err
	}
	v := viper.New()
	for _, k := range p.Keys() {
		if prefix != "" && k != prefix && !strings.HasPrefix(k, prefix+".") {
			continue
		}
		if k == constants.EnvironmentKey {
			continue
		}
		if raw, ok := p.raw(k); ok {
			v.Set(k, raw)
		}
	}
	return v, nil
}

// TimeoutOf parses APISettings.Timeout the same way Provider.Timeout does.
func (a APISettings) TimeoutOf() time.Duration {
	return parseDuration(a.Timeout, constants.DefaultTimeout)
}

// MaxLatencyOf parses ExpectSettings.MaxLatency.
func (e ExpectSettings) MaxLatencyOf() time.Duration {
	return parseDuration(e.MaxLatency, constants.DefaultMaxLatency)
}
