package constants

import (
	"time"
)

// Demo API defaults
const (
	DefaultBaseURL      = "https://reqres.in/api"
	DefaultAPIKeyHeader = "x-api-key"
	DefaultTimeout      = 30 * time.Second

	// Response time budget used by the latency presets.
	DefaultMaxLatency = 5 * time.Second
)

// Configuration layering
const (
	DefaultEnvironment = "dev"
	EnvironmentVar     = "ENV"
	EnvironmentKey     = "env"
	DefaultEnvPrefix   = "APICONTRACT"

	ConfigDir      = "config"
	ConfigBaseName = "api-config"
	ConfigExt      = ".yaml"
)

// Schema documents
const (
	SchemaDir = "schemas"
)

// Header names
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
)
