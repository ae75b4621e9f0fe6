// Package resources embeds the default config documents and JSON Schema
// documents so tests and the CLI work without a checkout-relative path.
package resources

import "embed"

//go:embed config/*.yaml schemas/*.json
var FS embed.FS
