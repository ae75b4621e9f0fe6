// Package httpc builds the resty clients used by the transport client and the CLI.
package httpc

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Httpc describes how to build a resty.Client. The zero value yields a
// default client with no TLS constraints and no timeout.
type Httpc struct {
	// TlsConfig, when set, is used as-is (cloned). The string bounds below are ignored.
	TlsConfig *tls.Config

	Insecure   bool
	MinVersion string // "1.0".."1.3"
	MaxVersion string
	Timeout    time.Duration
}

// New returns a resty.Client configured according to the receiver.
func (h *Httpc) New() *resty.Client {
	c := resty.New()
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	if cfg := h.tlsConfig(); cfg != nil {
		c.SetTLSClientConfig(cfg)
	}
	return c
}

func (h *Httpc) tlsConfig() *tls.Config {
	if h.TlsConfig != nil {
		return h.TlsConfig.Clone()
	}
	minV := parseTLSVersion(h.MinVersion)
	maxV := parseTLSVersion(h.MaxVersion)
	if !h.Insecure && minV == 0 && maxV == 0 {
		return nil
	}
	cfg := &tls.Config{MinVersion: minV, MaxVersion: maxV}
	if h.Insecure {
		cfg.InsecureSkipVerify = true //nolint:gosec // opt-in for self-signed test servers
	}
	if cfg.MinVersion != 0 && cfg.MaxVersion != 0 && cfg.MinVersion > cfg.MaxVersion {
		cfg.MaxVersion = cfg.MinVersion
	}
	return cfg
}

// parseTLSVersion accepts "1.2", "tls1.2", "TLS12" and similar; unknown input returns 0.
func parseTLSVersion(s string) uint16 {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "tls")
	v = strings.TrimPrefix(v, "v")
	v = strings.ReplaceAll(v, ".", "")
	v = strings.ReplaceAll(v, "_", "")
	switch v {
	case "10":
		return tls.VersionTLS10
	case "11":
		return tls.VersionTLS11
	case "12":
		return tls.VersionTLS12
	case "13":
		return tls.VersionTLS13
	default:
		return 0
	}
}
