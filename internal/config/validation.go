package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks invariants that would otherwise surface as confusing
// failures deep inside a build or publish run.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Content.PostsDir) == "" {
		errs = append(errs, errors.New("content.posts_dir must not be empty"))
	}
	if strings.TrimSpace(c.Output.Directory) == "" {
		errs = append(errs, errors.New("output.directory must not be empty"))
	}

	if c.Publish.Auth != nil && !c.Publish.Auth.IsZero() {
		switch c.Publish.Auth.Type {
		case AuthTypeToken:
			if c.Publish.Auth.Token == "" {
				errs = append(errs, errors.New("publish.auth: token auth requires a token"))
			}
		case AuthTypeBasic:
			if c.Publish.Auth.Username == "" || c.Publish.Auth.Password == "" {
				errs = append(errs, errors.New("publish.auth: basic auth requires username and password"))
			}
		case AuthTypeSSH:
			// key_path may be empty (falls back to ~/.ssh/id_rsa)
		default:
			errs = append(errs, fmt.Errorf("publish.auth: unknown auth type %q", c.Publish.Auth.Type))
		}
	}

	switch c.Publish.RetryBackoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		errs = append(errs, fmt.Errorf("publish.retry_backoff: unknown mode %q", c.Publish.RetryBackoff))
	}
	for name, v := range map[string]string{
		"publish.retry_initial_delay": c.Publish.RetryInitialDelay,
		"publish.retry_max_delay":     c.Publish.RetryMaxDelay,
		"serve.quiet_window":          c.Serve.QuietWindow,
		"serve.max_delay":             c.Serve.MaxDelay,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, v))
		}
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("serve.port: %d out of range", c.Serve.Port))
	}

	if c.Schedule.Interval != "" {
		if _, err := time.ParseDuration(c.Schedule.Interval); err != nil {
			errs = append(errs, fmt.Errorf("schedule.interval: invalid duration %q", c.Schedule.Interval))
		}
	}

	return errors.Join(errs...)
}

// RetryInitial returns the parsed retry initial delay (defaults already applied).
func (p PublishConfig) RetryInitial() time.Duration {
	d, err := time.ParseDuration(p.RetryInitialDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// RetryMax returns the parsed retry delay cap.
func (p PublishConfig) RetryMax() time.Duration {
	d, err := time.ParseDuration(p.RetryMaxDelay)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// QuietWindowDuration returns the parsed serve debounce quiet window.
func (s ServeConfig) QuietWindowDuration() time.Duration {
	d, err := time.ParseDuration(s.QuietWindow)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// MaxDelayDuration returns the parsed serve debounce max delay.
func (s ServeConfig) MaxDelayDuration() time.Duration {
	d, err := time.ParseDuration(s.MaxDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}
