package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// BasicConfig is the mapstructure shape of a basic auth block.
type BasicConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// basicValue encodes user:pass exactly as given. The user-id may not be
// blank or contain a colon; the password may be empty (RFC 7617).
func basicValue(user, pass string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", errors.New("basic: username is required")
	}
	if strings.Contains(user, ":") {
		return "", errors.New("basic: username must not contain ':'")
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass)), nil
}
