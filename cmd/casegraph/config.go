package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/scheduler"
	"github.com/rendis/casegraph/internal/timeline"
)

// Config holds all casegraph configuration.
// Priority: env vars > settings.yaml > defaults.
type Config struct {
	ListenAddr     string          `yaml:"listen_addr"`
	DBPath         string          `yaml:"db_path"`
	CasesFile      string          `yaml:"cases_file"`
	ReloadSchedule string          `yaml:"reload_schedule"`
	Prune          bool            `yaml:"prune"`
	LogLevel       string          `yaml:"log_level"`
	MermaidBinDir  string          `yaml:"mermaid_bin_dir"`
	Layout         timeline.Layout `yaml:"layout"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:    ":4200",
		DBPath:        filepath.Join(casegraphDir(), "casegraph.db"),
		LogLevel:      "info",
		MermaidBinDir: filepath.Join(casegraphDir(), "bin"),
		Layout:        timeline.DefaultLayout(),
	}
}

func casegraphDir() string {
	if v := os.Getenv("CASEGRAPH_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".casegraph"
	}
	return filepath.Join(home, ".casegraph")
}

func settingsPath() string {
	return filepath.Join(casegraphDir(), "settings.yaml")
}

// loadConfig layers the settings file at path (settingsPath() when empty)
// and CASEGRAPH_* env vars over the defaults. A missing settings file is
// not an error; a malformed one is. JSON settings files parse as YAML.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = settingsPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return Config{}, fmt.Errorf("read settings: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Layout = cfg.Layout.WithDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CASEGRAPH_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CASEGRAPH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CASEGRAPH_CASES_FILE"); v != "" {
		cfg.CasesFile = v
	}
	if v := os.Getenv("CASEGRAPH_RELOAD_SCHEDULE"); v != "" {
		cfg.ReloadSchedule = v
	}
	if v := os.Getenv("CASEGRAPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CASEGRAPH_MERMAID_BIN_DIR"); v != "" {
		cfg.MermaidBinDir = v
	}
	if v := os.Getenv("CASEGRAPH_PRUNE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CASEGRAPH_PRUNE: %w", err)
		}
		cfg.Prune = b
	}
	return nil
}

func (c Config) validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ReloadSchedule != "" {
		if c.CasesFile == "" {
			return fmt.Errorf("reload_schedule requires cases_file")
		}
		if _, err := scheduler.ParseSchedule(c.ReloadSchedule); err != nil {
			return err
		}
	}
	return c.Layout.Validate()
}

// dbURI turns the configured database path into a libSQL file URI.
func (c Config) dbURI() string {
	return "file:" + c.DBPath
}

// configDiff describes what changed between two configurations.
type configDiff struct {
	LogLevelChanged bool
	RestartNeeded   []string // fields that require a server restart
}

func diffConfigs(old, new Config) configDiff {
	var d configDiff
	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
	}
	if old.ListenAddr != new.ListenAddr {
		d.RestartNeeded = append(d.RestartNeeded, "listen_addr")
	}
	if old.DBPath != new.DBPath {
		d.RestartNeeded = append(d.RestartNeeded, "db_path")
	}
	if old.CasesFile != new.CasesFile {
		d.RestartNeeded = append(d.RestartNeeded, "cases_file")
	}
	if old.ReloadSchedule != new.ReloadSchedule {
		d.RestartNeeded = append(d.RestartNeeded, "reload_schedule")
	}
	if old.Prune != new.Prune {
		d.RestartNeeded = append(d.RestartNeeded, "prune")
	}
	if old.MermaidBinDir != new.MermaidBinDir {
		d.RestartNeeded = append(d.RestartNeeded, "mermaid_bin_dir")
	}
	if old.Layout != new.Layout {
		d.RestartNeeded = append(d.RestartNeeded, "layout")
	}
	return d
}

func pidPath() string {
	return filepath.Join(casegraphDir(), "casegraph.pid")
}
