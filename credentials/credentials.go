// Package credentials resolves the Google service account key used to access
// the spreadsheet. The key is looked up, in order, from a key file, from the
// GOOGLE_CREDENTIALS_JSON environment variable (the full JSON document, as
// injected by a secret manager) and from the GOOGLE_CREDENTIALS_B64
// environment variable (Base64-encoded JSON, for hosting platforms that
// mangle multi-line values).
package credentials

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	EnvCredentialsJSON = "GOOGLE_CREDENTIALS_JSON"
	EnvCredentialsB64  = "GOOGLE_CREDENTIALS_B64"
)

type Credentials struct {
	key    []byte
	email  string
	source string
}

// Resolve loads and validates a service account key. file is the path to a
// key file and may be blank, in which case the environment variables are
// tried. The key is read exactly once - there is no refresh or rotation.
func Resolve(file string) (*Credentials, error) {
	key, source, err := lookup(file)
	if err != nil {
		return nil, err
	}

	// ... verify that this is a service account key and extract the account email
	config, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account key from %s (%v)", source, err)
	}

	return &Credentials{
		key:    key,
		email:  config.Email,
		source: source,
	}, nil
}

// ClientOption returns the option used to authenticate the Sheets service.
func (c *Credentials) ClientOption() option.ClientOption {
	return option.WithCredentialsJSON(c.key)
}

// ClientEmail returns the service account email address. The spreadsheet has
// to be shared with this address, so it is included in operator-facing error
// messages.
func (c *Credentials) ClientEmail() string {
	return c.email
}

func (c *Credentials) Source() string {
	return c.source
}

func lookup(file string) ([]byte, string, error) {
	if strings.TrimSpace(file) != "" {
		key, err := os.ReadFile(file)
		if err != nil {
			return nil, "", fmt.Errorf("unable to read credentials file %s (%v)", file, err)
		}

		return key, fmt.Sprintf("file %s", file), nil
	}

	if v := os.Getenv(EnvCredentialsJSON); strings.TrimSpace(v) != "" {
		return []byte(v), EnvCredentialsJSON, nil
	}

	if v := os.Getenv(EnvCredentialsB64); strings.TrimSpace(v) != "" {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(v))
		if err != nil {
			return nil, "", fmt.Errorf("unable to decode %s (%v)", EnvCredentialsB64, err)
		}

		return key, EnvCredentialsB64, nil
	}

	return nil, "", fmt.Errorf("no service account key found - provide a credentials file or set %s or %s", EnvCredentialsJSON, EnvCredentialsB64)
}
