package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so profiles can say "1s" or "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = dur
	return nil
}

// Profile is a reusable probe run description loaded from YAML. Zero
// values fall back to the same defaults the CLI flags use.
type Profile struct {
	Target      string   `yaml:"target"`
	Interval    Duration `yaml:"interval"`
	MaxAttempts int      `yaml:"max_attempts"`
	Timeout     Duration `yaml:"timeout"`
	CacheBust   *bool    `yaml:"cache_bust"`
	UserAgents  []string `yaml:"user_agents"`
}

// LoadProfile reads, defaults and validates a profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.Interval.Duration == 0 {
		p.Interval.Duration = time.Second
	}
	if p.Timeout.Duration == 0 {
		p.Timeout.Duration = 10 * time.Second
	}
	if p.CacheBust == nil {
		t := true
		p.CacheBust = &t
	}
}

// Validate reports every problem in the profile at once.
func (p *Profile) Validate() error {
	var errs error
	if p.Target != "" {
		u, err := url.Parse(p.Target)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("target: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = multierr.Append(errs, fmt.Errorf("target: scheme %q (want http or https)", u.Scheme))
		} else if u.Host == "" {
			errs = multierr.Append(errs, fmt.Errorf("target: missing host"))
		}
	}
	if p.Interval.Duration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("interval: must not be negative, got %s", p.Interval))
	}
	if p.MaxAttempts < 0 {
		errs = multierr.Append(errs, fmt.Errorf("max_attempts: must not be negative, got %d", p.MaxAttempts))
	}
	if p.Timeout.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("timeout: must be positive, got %s", p.Timeout))
	}
	for i, ua := range p.UserAgents {
		if strings.TrimSpace(ua) == "" {
			errs = multierr.Append(errs, fmt.Errorf("user_agents[%d]: blank entry", i))
		}
	}
	return errs
}
