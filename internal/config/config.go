package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Update  UpdateConfig  `yaml:"update"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Favicon FaviconConfig `yaml:"favicon"`
}

type UpdateConfig struct {
	EnableAutoUpdate     bool          `yaml:"enableAutoUpdate"`
	Interval             time.Duration `yaml:"interval"`
	StartupDelay         time.Duration `yaml:"startupDelay"`
	SweepInterval        time.Duration `yaml:"sweepInterval"`
	DefaultFetchDelay    time.Duration `yaml:"defaultFetchDelay"`
	BackgroundFetchDelay time.Duration `yaml:"backgroundFetchDelay"`
	ShowNotification     bool          `yaml:"showNotification"`
}

type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type FaviconConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

func Default() *Config {
	return &Config{
		Update: UpdateConfig{
			EnableAutoUpdate:     true,
			Interval:             time.Hour,
			StartupDelay:         35 * time.Second,
			SweepInterval:        time.Minute,
			DefaultFetchDelay:    2 * time.Second,
			BackgroundFetchDelay: 4 * time.Second,
			ShowNotification:     true,
		},
		Fetch: FetchConfig{
			Timeout: 25 * time.Second,
		},
		Favicon: FaviconConfig{
			Timeout:         25 * time.Second,
			RefreshInterval: 14 * 24 * time.Hour,
		},
	}
}

// Load reads the configuration file. Missing options keep their default values and a missing file means the default
// configuration.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("unable to read %q: %w", path, err)
	}

	if err := Parse(data, config); err != nil {
		return nil, fmt.Errorf("invalid %q configuration file: %w", path, err)
	}

	return config, nil
}

func Parse(data []byte, config *Config) error {
	if err := yaml.Unmarshal(data, config); err != nil {
		return err
	}
	return config.validate()
}

func (c *Config) validate() error {
	for name, value := range map[string]time.Duration{
		"update.interval":         c.Update.Interval,
		"update.sweepInterval":    c.Update.SweepInterval,
		"fetch.timeout":           c.Fetch.Timeout,
		"favicon.timeout":         c.Favicon.Timeout,
		"favicon.refreshInterval": c.Favicon.RefreshInterval,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	for name, value := range map[string]time.Duration{
		"update.startupDelay":         c.Update.StartupDelay,
		"update.defaultFetchDelay":    c.Update.DefaultFetchDelay,
		"update.backgroundFetchDelay": c.Update.BackgroundFetchDelay,
	} {
		if value < 0 {
			return fmt.Errorf("%s can't be negative", name)
		}
	}

	return nil
}

// Prefs gives concurrent access to the update preferences and the runtime state which is kept in memory only.
type Prefs struct {
	lock           sync.Mutex
	config         Config
	lastUpdateTime time.Time
}

func NewPrefs(config *Config) *Prefs {
	return &Prefs{config: *config}
}

type Preferences struct {
	UpdateConfig
	LastUpdateTime         time.Time
	FetchTimeout           time.Duration
	FaviconRefreshInterval time.Duration
}

func (p *Prefs) Get() Preferences {
	p.lock.Lock()
	defer p.lock.Unlock()

	return Preferences{
		UpdateConfig:           p.config.Update,
		LastUpdateTime:         p.lastUpdateTime,
		FetchTimeout:           p.config.Fetch.Timeout,
		FaviconRefreshInterval: p.config.Favicon.RefreshInterval,
	}
}

func (p *Prefs) SetLastUpdateTime(value time.Time) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.lastUpdateTime = value
}

func (p *Prefs) SetAutoUpdate(enabled bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.config.Update.EnableAutoUpdate = enabled
}
