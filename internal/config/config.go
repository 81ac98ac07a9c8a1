// Package config builds the search configuration from defaults, an optional
// YAML file, environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "MINIGREP_"

// FileName is the config file looked up in the working and home directories.
const FileName = ".minigrep.yaml"

// legacyCaseEnv switches to case-insensitive matching when set to any value.
const legacyCaseEnv = "CASE_INSENSITIVE"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Config holds everything the CLI needs to run one search.
type Config struct {
	Query      string   `yaml:"query"`
	Path       string   `yaml:"path"`
	Regex      bool     `yaml:"regex"`
	IgnoreCase bool     `yaml:"ignore_case"`
	Context    int      `yaml:"context"`
	Recursive  bool     `yaml:"recursive"`
	Exclude    []string `yaml:"exclude"`
	Color      string   `yaml:"color"`
	Debug      int      `yaml:"debug"`
	Watch      bool     `yaml:"watch"`
	JSON       bool     `yaml:"json"`

	// File is the config file given with --config.
	File string `yaml:"-"`
}

// Default returns a case-sensitive literal search of one file without
// context lines.
func Default() *Config {
	return &Config{Color: ColorAuto}
}

// LoadFile reads a YAML config file over the defaults. A missing file is not
// an error and yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the config file to load: explicit if set, then
// $MINIGREP_CONFIG, then ./.minigrep.yaml, then $HOME/.minigrep.yaml. It
// returns "" when none exists.
func Discover(explicit string, lookup LookupFunc) string {
	if explicit != "" {
		return explicit
	}
	if p, ok := lookupNonEmpty(lookup, envPrefix+"CONFIG"); ok {
		return p
	}

	candidates := []string{FileName}
	if home, ok := lookupNonEmpty(lookup, "HOME"); ok {
		candidates = append(candidates, filepath.Join(home, FileName))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// Load discovers and reads the config file, then applies environment
// overrides. A file named explicitly must exist.
func Load(explicit string, lookup LookupFunc) (*Config, error) {
	path := Discover(explicit, lookup)

	cfg := Default()
	if path != "" {
		if explicit != "" {
			if _, err := os.Stat(explicit); err != nil {
				return nil, fmt.Errorf("config file: %w", err)
			}
		}
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.File = path

	ApplyEnvOverrides(cfg, lookup)
	return cfg, nil
}

// RegisterFlags attaches search flags to fs, bound to cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.IgnoreCase, "ignore-case", "i", cfg.IgnoreCase, "case-insensitive matching")
	fs.BoolVarP(&cfg.Regex, "regex", "x", cfg.Regex, "treat the query as a regular expression")
	fs.BoolVarP(&cfg.Regex, "regexp", "e", cfg.Regex, "alias for --regex")
	fs.BoolVarP(&cfg.Recursive, "recursive", "r", cfg.Recursive, "search every text file under a directory")
	fs.IntVarP(&cfg.Context, "context", "c", cfg.Context, "lines of context around each match (-c alone means 2, use -c=N or --context=N)")
	fs.Lookup("context").NoOptDefVal = "2"
	fs.StringArrayVar(&cfg.Exclude, "exclude", cfg.Exclude, "glob of paths to skip in recursive mode (repeatable)")
	fs.StringVar(&cfg.Color, "color", cfg.Color, "colorize output: auto, always or never")
	fs.StringVar(&cfg.File, "config", cfg.File, "config file (default: ./"+FileName+" or ~/"+FileName+")")
	fs.CountVar(&cfg.Debug, "debug", "print stage timings (repeat for per-file detail)")
	fs.BoolVarP(&cfg.Watch, "watch", "w", cfg.Watch, "search again whenever files change")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "output one JSON object per file")
}

// MergeFlags copies into c every value whose flag was set on the command
// line, so flags take precedence over file and environment values.
func (c *Config) MergeFlags(fs *pflag.FlagSet, flags *Config) {
	changed := func(names ...string) bool {
		for _, name := range names {
			if f := fs.Lookup(name); f != nil && f.Changed {
				return true
			}
		}
		return false
	}

	if changed("ignore-case") {
		c.IgnoreCase = flags.IgnoreCase
	}
	if changed("regex", "regexp") {
		c.Regex = flags.Regex
	}
	if changed("recursive") {
		c.Recursive = flags.Recursive
	}
	if changed("context") {
		c.Context = flags.Context
	}
	if changed("exclude") {
		c.Exclude = append(c.Exclude, flags.Exclude...)
	}
	if changed("color") {
		c.Color = flags.Color
	}
	if changed("debug") {
		c.Debug = flags.Debug
	}
	if changed("watch") {
		c.Watch = flags.Watch
	}
	if changed("json") {
		c.JSON = flags.JSON
	}
}

// ApplyEnvOverrides reads supported environment variables through lookup and
// overrides cfg in place. Unparsable values are ignored.
func ApplyEnvOverrides(cfg *Config, lookup LookupFunc) {
	if _, ok := lookup(legacyCaseEnv); ok {
		cfg.IgnoreCase = true
	}
	applyBoolEnv(lookup, "IGNORE_CASE", func(v bool) { cfg.IgnoreCase = v })
	applyBoolEnv(lookup, "REGEX", func(v bool) { cfg.Regex = v })
	applyIntEnv(lookup, "CONTEXT", func(v int) { cfg.Context = v })
	applyBoolEnv(lookup, "RECURSIVE", func(v bool) { cfg.Recursive = v })
	applyStringEnv(lookup, "COLOR", func(v string) { cfg.Color = v })
}

func applyStringEnv(lookup LookupFunc, key string, apply func(string)) {
	if raw, ok := lookupNonEmpty(lookup, envPrefix+key); ok {
		apply(raw)
	}
}

func applyIntEnv(lookup LookupFunc, key string, apply func(int)) {
	if raw, ok := lookupNonEmpty(lookup, envPrefix+key); ok {
		if value, err := strconv.Atoi(raw); err == nil {
			apply(value)
		}
	}
}

func applyBoolEnv(lookup LookupFunc, key string, apply func(bool)) {
	if raw, ok := lookupNonEmpty(lookup, envPrefix+key); ok {
		if value, err := strconv.ParseBool(raw); err == nil {
			apply(value)
		}
	}
}

func lookupNonEmpty(lookup LookupFunc, key string) (string, bool) {
	raw, ok := lookup(key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// Validate checks values the search cannot run with.
func (c *Config) Validate() error {
	if c.Context < 0 {
		return fmt.Errorf("context must be >= 0, got %d", c.Context)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q: must be one of: %s, %s, %s", c.Color, ColorAuto, ColorAlways, ColorNever)
	}

	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}
