package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when -c is not given.
const DefaultPath = "blog.yaml"

// Load reads and validates the configuration file at configPath.
//
// Before parsing, .env/.env.local are loaded (without overriding the process
// environment) and environment references in the YAML text are expanded, so
// secrets like publish tokens never need to live in the file itself.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s (run 'blog init' to create one)", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env. godotenv never overwrites a
// variable that is already set, so the process environment wins over
// .env.local, which wins over .env.
func loadEnvFiles() {
	for _, p := range []string{".env.local", ".env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:       "IQDevs",
			Description: "Elite technologists in the area, unite!",
			BaseURL:     "https://www.iqdevs.com",
			Author:      "IQDevs",
			Language:    "en",
		},
		Content: ContentConfig{
			PostsDir:  "_posts",
			StaticDir: "static",
		},
		Output: OutputConfig{
			Directory: "_site",
			Clean:     true,
		},
		Publish: PublishConfig{
			URL:          "https://github.com/IQDevs/IQDevs.github.io.git",
			Branch:       "master",
			SourceBranch: "master",
			Committer: Committer{
				Name:  "blog deploy",
				Email: "deploy@iqdevs.com",
			},
			Auth: &AuthConfig{
				Type:  AuthTypeToken,
				Token: "${GITHUB_TOKEN}",
			},
		},
		Serve: ServeConfig{Port: 4000},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
