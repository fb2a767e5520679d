package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POSTVIEW_SERVER_PORT
const EnvPrefix = "POSTVIEW"

// Config represents the application configuration.
type Config struct {
	AppName   string
	Server    *Server
	GraphQL   *GraphQL
	Cache     *Cache
	Store     *Store
	RateLimit *RateLimit
	Logger    *Logger
	Viper     *viper.Viper
}

// Loader reads the configuration and keeps the current value across reloads
type Loader struct {
	path   string
	v      *viper.Viper
	mu     sync.Mutex
	config *Config
}

// NewLoader creates a Loader for path. An empty path searches for config.yaml
// in the working directory, $HOME/.postview and /etc/postview; no file at all
// leaves the defaults and environment in effect.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.postview")
		v.AddConfigPath("/etc/postview")
	}
	return &Loader{path: path, v: v}
}

// Load reads the configuration
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	l.config = l.build()
	return l.config, nil
}

// Current returns the last loaded configuration
func (l *Loader) Current() *Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config
}

// Watch watches the configuration file and calls callback with every successful reload.
func (l *Loader) Watch(callback func(*Config), onError func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.Load()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(cfg)
	})
	l.v.WatchConfig()
}

// Load reads the configuration at path once
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func (l *Loader) build() *Config {
	v := l.v
	return &Config{
		AppName:   getStringOrDefault(v, "app_name", "postview"),
		Server:    getServerConfig(v),
		GraphQL:   getGraphQLConfig(v),
		Cache:     getCacheConfig(v),
		Store:     getStoreConfig(v),
		RateLimit: getRateLimitConfig(v),
		Logger:    getLoggerConfig(v),
		Viper:     v,
	}
}
