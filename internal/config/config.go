package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. QUIRE_OUTPUTDIR.
const EnvPrefix = "QUIRE"

// Config is the decoded site configuration.
type Config struct {
	SiteTitle string         `mapstructure:"siteTitle"`
	BaseURL   string         `mapstructure:"baseURL"`
	Language  string         `mapstructure:"language" validate:"required"`
	Params    map[string]any `mapstructure:"params"`

	ContentDir string `mapstructure:"contentDir" validate:"required"`
	LayoutsDir string `mapstructure:"layoutsDir" validate:"required"`
	StaticDir  string `mapstructure:"staticDir"`
	DataDir    string `mapstructure:"dataDir"`
	OutputDir  string `mapstructure:"outputDir" validate:"required"`

	PrettyURLs      bool `mapstructure:"prettyURLs"`
	Clean           bool `mapstructure:"clean"`
	Drafts          bool `mapstructure:"drafts"`
	Workers         int  `mapstructure:"workers" validate:"min=1"`
	ContinueOnError bool `mapstructure:"continueOnError"`

	Log      LogConfig      `mapstructure:"log"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// MarkdownConfig selects goldmark extensions and renderer behaviour.
type MarkdownConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hardWraps"`
	Unsafe     bool     `mapstructure:"unsafe"`
	HeadingIDs bool     `mapstructure:"headingIDs"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file. When empty ./config.yaml is tried.
	File string
	// SearchPath is the directory searched for config.yaml (default ".").
	SearchPath string
	// EnvFile is loaded into the process environment before reading
	// overrides. A missing file is ignored.
	EnvFile string
	// Flags are bound on top of file and environment values.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"output":            "outputDir",
	"content":           "contentDir",
	"layouts":           "layoutsDir",
	"base-url":          "baseURL",
	"drafts":            "drafts",
	"workers":           "workers",
	"continue-on-error": "continueOnError",
	"log-level":         "log.level",
}

// Load reads defaults, the config file, .env, QUIRE_* environment variables
// and bound flags, in increasing order of precedence. The second return
// value is the config file that was used, if any.
func Load(opts LoadOptions) (Config, string, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, "", fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		searchPath := opts.SearchPath
		if searchPath == "" {
			searchPath = "."
		}
		v.AddConfigPath(searchPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, "", fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.File != "" {
			return Config{}, "", fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, used, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("siteTitle", "My Quire Site")
	v.SetDefault("baseURL", "")
	v.SetDefault("language", "en")
	v.SetDefault("contentDir", "content")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("staticDir", "static")
	v.SetDefault("dataDir", "data")
	v.SetDefault("outputDir", "public")
	v.SetDefault("prettyURLs", false)
	v.SetDefault("clean", true)
	v.SetDefault("drafts", false)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("continueOnError", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("markdown.extensions", []string{"table", "strikethrough", "footnote", "tasklist"})
	v.SetDefault("markdown.hardWraps", false)
	v.SetDefault("markdown.unsafe", true)
	v.SetDefault("markdown.headingIDs", false)
}

var validate = validator.New()

// Validate checks field constraints and that the output directory neither
// is nor contains any source directory, since a clean build removes it.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.CheckOutputDir()
}

// CheckOutputDir rejects an output directory that is, or is an ancestor
// of, a source directory.
func (c Config) CheckOutputDir() error {
	out := filepath.Clean(c.OutputDir)
	if out == "." || out == "/" {
		return fmt.Errorf("invalid configuration: outputDir %q would clobber the project", c.OutputDir)
	}
	sources := []struct{ key, dir string }{
		{"contentDir", c.ContentDir},
		{"layoutsDir", c.LayoutsDir},
		{"staticDir", c.StaticDir},
		{"dataDir", c.DataDir},
	}
	for _, src := range sources {
		if src.dir == "" {
			continue
		}
		within, err := isWithin(out, src.dir)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if within {
			return fmt.Errorf("invalid configuration: outputDir %q must not be or contain %s (%s)", c.OutputDir, src.key, src.dir)
		}
	}
	return nil
}

// isWithin reports whether dir is parent or one of its descendants.
func isWithin(parent, dir string) (bool, error) {
	absParent, err := filepath.Abs(parent)
	if err != nil {
		return false, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absParent, absDir)
	if err != nil {
		return false, nil
	}
	if rel == "." {
		return true, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel), nil
}
