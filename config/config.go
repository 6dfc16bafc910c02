package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/BurntSushi/toml"

	"github.com/scipunch/newsdesk/feed"
)

const baseCfgPath = "newsdesk/config.toml"

type Config struct {
	Language        feed.Language     `toml:"language"`         // default feed language
	CachePath       string            `toml:"cache_path"`       // sqlite cache database
	OutputDirectory string            `toml:"output_directory"` // directory for generated digests
	ToastSeconds    int               `toml:"toast_seconds"`    // achievement toast lifetime
	Previews        bool              `toml:"previews"`         // fetch source-page previews when rendering
	Filters         map[string]Filter `toml:"filters"`          // named filters that the digest can reference
	DigestFilters   []string          `toml:"digest_filters"`   // filters to apply to the rendered digest (pipeline)
}

// Filter defines rules for excluding articles from the digest
type Filter struct {
	Categories      []string `toml:"categories"`        // keep only these categories (empty = all)
	ExcludePatterns []string `toml:"exclude_patterns"`  // regex patterns to exclude
	MinSummaryWords int      `toml:"min_summary_words"` // minimum summary word count (0 = no limit)
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	var home = os.Getenv("HOME")
	var cacheBase = path.Join(home, ".cache/newsdesk")
	return Config{
		Language:        feed.LangEN,
		CachePath:       path.Join(cacheBase, "cache.db"),
		OutputDirectory: path.Join(home, "newsdesk"),
		ToastSeconds:    5,
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}
