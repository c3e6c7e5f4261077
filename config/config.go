package config

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	URL               string        `yaml:"url"`
	OAuthURL          string        `yaml:"oauth_url"`
	OAuthClientID     string        `yaml:"oauth_client_id"`
	OAuthClientSecret string        `yaml:"oauth_client_secret"`
	OAuthRedirectURL  string        `yaml:"oauth_redirect_url"`
	OAuthToken        string        `yaml:"oauth_token"`
	SessionStore      string        `yaml:"session_store"`
	SessionDir        string        `yaml:"session_dir"`
	Timeout           time.Duration `yaml:"timeout"`
	RateLimit         float64       `yaml:"rate_limit"`
	LogLevel          string        `yaml:"log_level"`
}

const defaultURL = "https://api.openstreetmap.org/api"
const defaultOAuthURL = "https://www.openstreetmap.org"
const defaultRedirectURL = "urn:ietf:wg:oauth:2.0:oob"
const defaultSessionStore = "badger"
const defaultSessionDir = "/tmp/osmapi"
const defaultTimeout = 60 * time.Second
const defaultLogLevel = "info"

type Options struct {
	Config
	ConfigFile  string
	Httpprofile string
}

// NewFlagSet returns a FlagSet for the command name with all base
// options registered. Commands add their own flags before calling Parse.
func NewFlagSet(name string) (*flag.FlagSet, *Options) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	opts := &Options{}
	addBaseFlags(opts, flags)
	return flags, opts
}

func addBaseFlags(opts *Options, flags *flag.FlagSet) {
	flags.StringVar(&opts.ConfigFile, "config", "", "config (YAML)")
	flags.StringVar(&opts.Httpprofile, "httpprofile", "", "bind address for profile server")
	flags.StringVar(&opts.URL, "url", defaultURL, "OSM API base URL")
	flags.StringVar(&opts.OAuthURL, "oauth-url", defaultOAuthURL, "OAuth 2.0 authorization server")
	flags.StringVar(&opts.OAuthClientID, "oauth-client-id", "", "OAuth 2.0 client id")
	flags.StringVar(&opts.OAuthClientSecret, "oauth-client-secret", "", "OAuth 2.0 client secret")
	flags.StringVar(&opts.OAuthRedirectURL, "oauth-redirect-url", defaultRedirectURL, "OAuth 2.0 redirect URL")
	flags.StringVar(&opts.OAuthToken, "oauth-token", "", "OAuth 2.0 access token, disables Basic-Auth")
	flags.StringVar(&opts.SessionStore, "session-store", defaultSessionStore, "session store (memory, badger, leveldb)")
	flags.StringVar(&opts.SessionDir, "session-dir", defaultSessionDir, "session directory")
	flags.DurationVar(&opts.Timeout, "timeout", defaultTimeout, "HTTP timeout")
	flags.Float64Var(&opts.RateLimit, "rate-limit", 0, "max requests per second, 0 for no limit")
	flags.StringVar(&opts.LogLevel, "loglevel", defaultLogLevel, "log level (debug, info, warn, error)")
}

// Parse parses args and merges the config file. Options set on the
// command line take precedence over options from the config file.
func (o *Options) Parse(flags *flag.FlagSet, args []string) error {
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := o.updateFromConfig(); err != nil {
		return err
	}
	if errs := o.check(); len(errs) != 0 {
		return errs[0]
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	conf := &Config{}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing config %s", filename)
	}
	return conf, nil
}

func (o *Options) updateFromConfig() error {
	if o.ConfigFile == "" {
		return nil
	}
	conf, err := LoadConfig(o.ConfigFile)
	if err != nil {
		return err
	}

	mergeString(&o.URL, defaultURL, conf.URL)
	mergeString(&o.OAuthURL, defaultOAuthURL, conf.OAuthURL)
	mergeString(&o.OAuthClientID, "", conf.OAuthClientID)
	mergeString(&o.OAuthClientSecret, "", conf.OAuthClientSecret)
	mergeString(&o.OAuthRedirectURL, defaultRedirectURL, conf.OAuthRedirectURL)
	mergeString(&o.OAuthToken, "", conf.OAuthToken)
	mergeString(&o.SessionStore, defaultSessionStore, conf.SessionStore)
	mergeString(&o.SessionDir, defaultSessionDir, conf.SessionDir)
	mergeString(&o.LogLevel, defaultLogLevel, conf.LogLevel)
	if o.Timeout == defaultTimeout && conf.Timeout != 0 {
		o.Timeout = conf.Timeout
	}
	if o.RateLimit == 0 && conf.RateLimit != 0 {
		o.RateLimit = conf.RateLimit
	}
	return nil
}

// mergeString sets opt to conf if opt was not changed from def.
func mergeString(opt *string, def, conf string) {
	if *opt == def && conf != "" {
		*opt = conf
	}
}

func (o *Options) check() []error {
	errs := []error{}
	u, err := url.Parse(o.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid -url '%s'", o.URL))
	}
	switch o.SessionStore {
	case "memory", "badger", "leveldb":
	default:
		errs = append(errs, fmt.Errorf("unknown -session-store '%s'", o.SessionStore))
	}
	if o.Timeout < 0 {
		errs = append(errs, errors.New("-timeout must not be negative"))
	}
	if o.RateLimit < 0 {
		errs = append(errs, errors.New("-rate-limit must not be negative"))
	}
	return errs
}
