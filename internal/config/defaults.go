package config

// ApplyDefaults fills in zero values with sensible defaults. It is idempotent
// and always runs before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Blog"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}

	if cfg.Content.PostsDir == "" {
		cfg.Content.PostsDir = "_posts"
	}

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "_site"
	}

	if cfg.Publish.Branch == "" {
		cfg.Publish.Branch = "main"
	}
	if cfg.Publish.SourceBranch == "" {
		cfg.Publish.SourceBranch = "master"
	}
	if cfg.Publish.MaxRetries == 0 {
		cfg.Publish.MaxRetries = 2
	}
	if cfg.Publish.RetryBackoff == "" {
		cfg.Publish.RetryBackoff = RetryBackoffLinear
	}
	if cfg.Publish.RetryInitialDelay == "" {
		cfg.Publish.RetryInitialDelay = "1s"
	}
	if cfg.Publish.RetryMaxDelay == "" {
		cfg.Publish.RetryMaxDelay = "30s"
	}

	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 4000
	}
	if cfg.Serve.QuietWindow == "" {
		cfg.Serve.QuietWindow = "300ms"
	}
	if cfg.Serve.MaxDelay == "" {
		cfg.Serve.MaxDelay = "2s"
	}

	if cfg.History.Path == "" {
		cfg.History.Path = ".blog/history.db"
	}
}
