package app

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jeremywohl/flatten"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	// DefaultEndpoint is the Webex API base URL.
	DefaultEndpoint = "https://webexapis.com/v1"

	// TokenEnvVar is read for the access token when it is not passed as a flag.
	TokenEnvVar = "WEBEX_ACCESS_TOKEN"

	defaultHTTPTimeout = 30 * time.Second
	defaultCfgFile     = ".xapictl.yml"
)

var (
	ErrConfig  = errors.New("configuration error")
	ErrNoToken = errors.New("no access token provided, use --token or set the " + TokenEnvVar + " environment variable")
)

// Configuration holds application configuration read from a YAML or set by env variables.
//
// nolint:govet // prefer readability over field alignment optimization for this case.
type Configuration struct {
	// LogLevel is the app verbose logging level.
	// one of - info, debug, trace
	LogLevel string `mapstructure:"log_level"`

	// Endpoint is the device management API base URL.
	Endpoint string `mapstructure:"endpoint"`

	// EndpointURL is the parsed Endpoint, set on load.
	EndpointURL *url.URL `mapstructure:"-"`

	// Token is the API access token, the --token flag and the WEBEX_ACCESS_TOKEN
	// environment variable take precedence.
	Token string `mapstructure:"token"`

	// HTTPTimeout is the time limit for each API request.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// RetryMax is the number of times a failed API request is retried, requests are not retried by default.
	RetryMax int `mapstructure:"retry_max"`

	// PageSize is the number of devices requested per page, the server default applies when zero.
	PageSize int `mapstructure:"page_size"`

	// Metrics defines where run metrics are sent.
	Metrics MetricsOptions `mapstructure:"metrics"`
}

// MetricsOptions defines the metrics export parameters.
type MetricsOptions struct {
	// Pushgateway is the Prometheus Pushgateway URL run metrics are pushed to, metrics are not exported when empty.
	Pushgateway string `mapstructure:"pushgateway"`
}

// LoadConfiguration loads application configuration
//
// Reads in the cfgFile when available and overrides from environment variables.
func (a *App) LoadConfiguration(cfgFile string) error {
	a.v.SetConfigType("yaml")
	a.v.SetEnvPrefix(model.AppName)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	a.v.SetDefault("log_level", "info")
	a.v.SetDefault("endpoint", DefaultEndpoint)
	a.v.SetDefault("http_timeout", defaultHTTPTimeout)
	a.v.SetDefault("retry_max", 0)
	a.v.SetDefault("page_size", 0)

	cfgFile, required := configFile(cfgFile)
	if cfgFile != "" {
		fh, err := os.Open(cfgFile)
		switch {
		case err == nil:
			defer fh.Close()

			if err = a.v.ReadConfig(fh); err != nil {
				return errors.Wrap(ErrConfig, "ReadConfig error: "+err.Error())
			}
		case required || !os.IsNotExist(err):
			return errors.Wrap(ErrConfig, err.Error())
		}
	}

	if err := a.envBindVars(); err != nil {
		return errors.Wrap(ErrConfig, "env var bind error: "+err.Error())
	}

	if err := a.v.Unmarshal(a.Config); err != nil {
		return errors.Wrap(ErrConfig, "Unmarshal error: "+err.Error())
	}

	return a.Config.validate()
}

// configFile returns the configuration file to read and if it is required to exist.
func configFile(cfgFile string) (string, bool) {
	if cfgFile != "" {
		return cfgFile, true
	}

	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}

	return filepath.Join(homedir, defaultCfgFile), false
}

// envBindVars binds environment variables to the struct
// without a configuration file being unmarshalled,
// this is a workaround for a viper bug,
//
// This can be replaced by the solution in https://github.com/spf13/viper/pull/1429
// once that PR is merged.
func (a *App) envBindVars() error {
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(a.Config, &envKeysMap); err != nil {
		return err
	}

	// Flatten nested conf map
	flat, err := flatten.Flatten(envKeysMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten config")
	}

	for k := range flat {
		if err := a.v.BindEnv(k); err != nil {
			return errors.Wrap(ErrConfig, "env var bind error: "+err.Error())
		}
	}

	return nil
}

// validate checks the configuration parameters and sets EndpointURL,
// all problems found are returned together.
func (c *Configuration) validate() error {
	var merr *multierror.Error

	endpointURL, err := url.Parse(c.Endpoint)

	switch {
	case c.Endpoint == "":
		merr = multierror.Append(merr, errors.New("endpoint not defined"))
	case err != nil:
		merr = multierror.Append(merr, errors.New("endpoint URL error: "+err.Error()))
	case endpointURL.Scheme != "http" && endpointURL.Scheme != "https", endpointURL.Host == "":
		merr = multierror.Append(merr, errors.New("endpoint URL must be an absolute http(s) URL: "+c.Endpoint))
	default:
		c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")
		c.EndpointURL = endpointURL
	}

	if c.HTTPTimeout < 0 {
		merr = multierror.Append(merr, errors.New("http_timeout must not be negative"))
	}

	if c.RetryMax < 0 {
		merr = multierror.Append(merr, errors.New("retry_max must not be negative"))
	}

	if c.PageSize < 0 {
		merr = multierror.Append(merr, errors.New("page_size must not be negative"))
	}

	if c.Metrics.Pushgateway != "" {
		if _, err := url.ParseRequestURI(c.Metrics.Pushgateway); err != nil {
			merr = multierror.Append(merr, errors.New("metrics.pushgateway URL error: "+err.Error()))
		}
	}

	if merr.ErrorOrNil() != nil {
		return errors.Wrap(ErrConfig, merr.Error())
	}

	return nil
}

// AccessToken returns the API token, the flag value takes precedence over
// the WEBEX_ACCESS_TOKEN environment variable, which takes precedence over the configuration.
func (a *App) AccessToken(flagToken string) (string, error) {
	for _, token := range []string{flagToken, os.Getenv(TokenEnvVar), a.Config.Token} {
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}

	return "", ErrNoToken
}
