package config

// Config represents the application configuration loaded from blog.yaml.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Output   OutputConfig   `yaml:"output"`
	Publish  PublishConfig  `yaml:"publish"`
	Serve    ServeConfig    `yaml:"serve"`
	Schedule ScheduleConfig `yaml:"schedule"`
	History  HistoryConfig  `yaml:"history"`
}

// SiteConfig carries site-wide metadata rendered into layouts and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Language    string `yaml:"language,omitempty"`
}

// ContentConfig locates authored content.
type ContentConfig struct {
	PostsDir  string `yaml:"posts_dir"`
	StaticDir string `yaml:"static_dir,omitempty"`
	Layouts   string `yaml:"layouts,omitempty"` // optional override dir for built-in layouts
	Drafts    bool   `yaml:"drafts,omitempty"`  // include posts marked draft
}

// OutputConfig controls where the generated site lands.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // remove stale files not produced by this build
}

// AuthType enumerates supported authentication methods (stringly for YAML compatibility).
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// AuthConfig represents git authentication configuration.
type AuthConfig struct {
	Type     AuthType `yaml:"type"` // ssh|token|basic|none
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// IsZero reports whether no auth method is specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

// RetryBackoffMode enumerates backoff growth strategies for transient failures.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// PublishConfig describes the publish repository and how to push into it.
type PublishConfig struct {
	// URL of the repository hosting the generated site.
	URL string `yaml:"url"`
	// Branch to commit to in the publish repository (default main).
	Branch string `yaml:"branch,omitempty"`
	// SourceBranch gates publishing: only when the content checkout is on
	// this branch does publish proceed (default master, matching the
	// original deploy convention). Empty disables the gate.
	SourceBranch string      `yaml:"source_branch,omitempty"`
	Committer    Committer   `yaml:"committer,omitempty"`
	Auth         *AuthConfig `yaml:"auth,omitempty"`
	// Preserve lists top-level names in the publish repository that survive
	// content replacement (e.g. CNAME).
	Preserve []string `yaml:"preserve,omitempty"`

	// Retry policy fields for transient push/clone failures.
	MaxRetries        int              `yaml:"max_retries,omitempty"`         // retries after first attempt (default 2)
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`       // fixed|linear|exponential (default linear)
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"` // duration string (default 1s)
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`     // cap for growth (default 30s)
}

// Committer identifies the author/committer of publish commits.
type Committer struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// ServeConfig controls the local preview server.
type ServeConfig struct {
	Port        int    `yaml:"port,omitempty"`
	QuietWindow string `yaml:"quiet_window,omitempty"` // rebuild debounce quiet window (default 300ms)
	MaxDelay    string `yaml:"max_delay,omitempty"`    // rebuild cannot be postponed past this (default 2s)
	Metrics     bool   `yaml:"metrics,omitempty"`      // expose Prometheus /metrics
}

// ScheduleConfig drives daemon mode.
type ScheduleConfig struct {
	// Interval between build+publish runs (duration string). Ignored when
	// Cron is set.
	Interval string `yaml:"interval,omitempty"`
	// Cron expression (standard 5-field) for build+publish runs.
	Cron string `yaml:"cron,omitempty"`
}

// HistoryConfig locates the local build-history database.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"` // default .blog/history.db
}
