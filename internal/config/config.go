// Package config loads gateway configuration from a JSON file or URL, with
// environment-variable fallbacks for the upstream credentials so the server
// can also run configured purely from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	optional "github.com/TBXark/optional-go"
	"github.com/go-sphere/confstore"
	"github.com/go-sphere/confstore/codec"
	"github.com/go-sphere/confstore/provider"
	fileprovider "github.com/go-sphere/confstore/provider/file"
	httpprovider "github.com/go-sphere/confstore/provider/http"
)

// ServerType selects the transport the gateway listens on.
type ServerType string

const (
	ServerTypeWS         ServerType = "ws"
	ServerTypeSSE        ServerType = "sse"
	ServerTypeStreamable ServerType = "streamable-http"
	ServerTypeStdio      ServerType = "stdio"
)

// Options are transport-independent toggles.
type Options struct {
	LogEnabled optional.Field[bool] `json:"logEnabled,omitempty"`
	AuthTokens []string             `json:"authTokens,omitempty"`
}

// ServerConfig describes the gateway's own listener.
type ServerConfig struct {
	Addr    string     `json:"addr"`
	BaseURL string     `json:"baseURL,omitempty"`
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Type    ServerType `json:"type,omitempty"`
	Options *Options   `json:"options,omitempty"`
}

// OICConfig describes the upstream tenant and its OAuth2 client credentials.
type OICConfig struct {
	BaseURL      string `json:"baseURL"`
	TokenURL     string `json:"tokenURL"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Scope        string `json:"scope,omitempty"`
	TimeoutSecs  int    `json:"timeoutSecs,omitempty"`
	MaxRetries   int    `json:"maxRetries,omitempty"`
}

// Config is the full gateway configuration.
type Config struct {
	Server *ServerConfig `json:"server"`
	OIC    *OICConfig    `json:"oic"`
}

// Load reads configuration from path (a file or http(s) URL). An empty path
// starts from defaults, which is enough when the upstream is configured via
// environment variables.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if path != "" {
		loaded, err := confstore.Load[Config](newProvider(path), codec.JsonCodec())
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		conf = loaded
	}

	if conf.Server == nil {
		conf.Server = &ServerConfig{}
	}
	if conf.Server.Options == nil {
		conf.Server.Options = &Options{}
	}
	if conf.Server.Addr == "" {
		conf.Server.Addr = ":9100"
	}
	if conf.Server.Name == "" {
		conf.Server.Name = "oic-mcp"
	}
	if conf.Server.Version == "" {
		conf.Server.Version = "0.1.0"
	}
	if conf.Server.Type == "" {
		conf.Server.Type = ServerTypeWS
	}

	if conf.OIC == nil {
		conf.OIC = &OICConfig{}
	}
	applyEnv(conf.OIC)
	if err := validate(conf.OIC); err != nil {
		return nil, err
	}
	return conf, nil
}

// newProvider maps the path-or-URL rule onto confstore providers: http(s)
// URLs are fetched, everything else is read from disk.
func newProvider(path string) provider.Provider {
	if httpprovider.IsRemoteURL(path) {
		return httpprovider.New(path)
	}
	return fileprovider.New(path)
}

// applyEnv fills unset upstream fields from the environment, using the same
// variable names the gateway has always documented.
func applyEnv(oic *OICConfig) {
	fallback := func(target *string, key string) {
		if *target == "" {
			*target = os.Getenv(key)
		}
	}
	fallback(&oic.BaseURL, "OIC_BASE_URL")
	fallback(&oic.TokenURL, "OAUTH_TOKEN_URL")
	fallback(&oic.ClientID, "OAUTH_CLIENT_ID")
	fallback(&oic.ClientSecret, "OAUTH_CLIENT_SECRET")
	fallback(&oic.Scope, "OAUTH_SCOPE")
	if oic.TimeoutSecs == 0 {
		oic.TimeoutSecs = envInt("HTTP_TIMEOUT_SECS", 30)
	}
	if oic.MaxRetries == 0 {
		oic.MaxRetries = envInt("HTTP_MAX_RETRIES", 2)
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func validate(oic *OICConfig) error {
	switch {
	case oic.BaseURL == "":
		return errors.New("oic.baseURL (or OIC_BASE_URL) is required")
	case oic.TokenURL == "":
		return errors.New("oic.tokenURL (or OAUTH_TOKEN_URL) is required")
	case oic.ClientID == "":
		return errors.New("oic.clientId (or OAUTH_CLIENT_ID) is required")
	case oic.ClientSecret == "":
		return errors.New("oic.clientSecret (or OAUTH_CLIENT_SECRET) is required")
	}
	return nil
}
