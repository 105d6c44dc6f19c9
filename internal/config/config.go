package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/liberioai/dossier/internal/catalog"
	"github.com/liberioai/dossier/internal/contentstore"
	"github.com/liberioai/dossier/internal/paths"
)

// Config represents the CLI configuration for dossier.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
}

// SourceConfig selects and configures the content store.
type SourceConfig struct {
	Kind   string       `yaml:"kind"`
	Root   string       `yaml:"root"`
	GitHub GitHubConfig `yaml:"github"`
	Local  LocalConfig  `yaml:"local"`
	S3     S3Config     `yaml:"s3"`
}

type GitHubConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Ref    string `yaml:"ref"`
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"`
}

type LocalConfig struct {
	Dir string `yaml:"dir"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Secure    bool   `yaml:"secure"`
}

// ServerConfig configures the MCP transport.
type ServerConfig struct {
	Transport string `yaml:"transport"`
	Address   string `yaml:"address"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HistoryConfig controls invocation recording.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Source kinds.
const (
	SourceGitHub = "github"
	SourceLocal  = "local"
	SourceS3     = "s3"
)

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Kind: SourceGitHub,
			Root: catalog.DefaultRoot,
			GitHub: GitHubConfig{
				Owner:  "liberioai",
				Repo:   "dossier",
				APIURL: contentstore.DefaultGitHubAPI,
				Token:  resolveSecret("github"),
			},
			Local: LocalConfig{Dir: "."},
			S3: S3Config{
				Endpoint: "s3.amazonaws.com",
				Secure:   true,
			},
		},
		Server: ServerConfig{
			Transport: "stdio",
			Address:   ":8084",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Path: paths.HistoryDB(),
		},
	}
}

// Load reads configuration from the given path, falling back to defaults when missing.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applySecrets()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.applySecrets()
	if strings.TrimSpace(cfg.Source.Root) == "" {
		cfg.Source.Root = catalog.DefaultRoot
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = paths.HistoryDB()
	}

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case SourceGitHub:
		if c.Source.GitHub.Owner == "" || c.Source.GitHub.Repo == "" {
			return errors.New("config: source.github requires owner and repo")
		}
	case SourceLocal:
		if c.Source.Local.Dir == "" {
			return errors.New("config: source.local.dir is empty")
		}
	case SourceS3:
		if c.Source.S3.Bucket == "" {
			return errors.New("config: source.s3.bucket is empty")
		}
	default:
		return fmt.Errorf("config: unknown source.kind %q (want github, local, or s3)", c.Source.Kind)
	}

	switch c.Server.Transport {
	case "stdio", "sse", "http":
	default:
		return fmt.Errorf("config: unknown server.transport %q (want stdio, sse, or http)", c.Server.Transport)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// NewStore builds the content store the source section describes.
func (c Config) NewStore() (contentstore.Store, error) {
	switch c.Source.Kind {
	case SourceLocal:
		return contentstore.NewLocal(c.Source.Local.Dir)
	case SourceS3:
		s := c.Source.S3
		return contentstore.NewS3(contentstore.S3Options{
			Endpoint:  s.Endpoint,
			Bucket:    s.Bucket,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
			Region:    s.Region,
			Secure:    s.Secure,
		})
	case SourceGitHub:
		g := c.Source.GitHub
		return contentstore.NewGitHub(contentstore.GitHubOptions{
			Owner:   g.Owner,
			Repo:    g.Repo,
			Ref:     g.Ref,
			Token:   g.Token,
			BaseURL: g.APIURL,
		})
	default:
		return nil, fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
}
