package config

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/sleroq/notion2md/internal/app/graph"
	"github.com/sleroq/notion2md/internal/domain/notion"
)

const (
	EnvPrefix         = "NOTION2MD"
	DefaultConfigName = "notion2md"

	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Keys shared by the config file, env vars and command flags.
const (
	KeyInput              = "input"
	KeyRoot               = "root"
	KeyOutput             = "output"
	KeyFormat             = "format"
	KeyTemplate           = "template"
	KeyInstruction        = "instruction"
	KeyClipboard          = "clipboard"
	KeyStdout             = "stdout"
	KeyIncludeProperties  = "include-properties"
	KeyIncludeMetadata    = "include-metadata"
	KeyEnableSanitization = "sanitize"
	KeyEnableParallel     = "parallel"
	KeyConcurrency        = "concurrency"
	KeyMaxDepth           = "max-depth"
	KeyMaxNodes           = "max-nodes"
	KeyLogLevel           = "log-level"
	KeyLogFormat          = "log-format"
)

type Config struct {
	// Input is the snapshot directory of fetched Notion JSON.
	Input string `mapstructure:"input"`
	// Root is a page or database id or URL. Empty means the snapshot manifest root.
	Root        string `mapstructure:"root"`
	Output      string `mapstructure:"output"`
	Format      string `mapstructure:"format"`
	Template    string `mapstructure:"template"`
	Instruction string `mapstructure:"instruction"`
	Clipboard   bool   `mapstructure:"clipboard"`
	Stdout      bool   `mapstructure:"stdout"`

	IncludeProperties  bool `mapstructure:"include-properties"`
	IncludeMetadata    bool `mapstructure:"include-metadata"`
	EnableSanitization bool `mapstructure:"sanitize"`
	EnableParallel     bool `mapstructure:"parallel"`
	Concurrency        int  `mapstructure:"concurrency"`
	MaxDepth           int  `mapstructure:"max-depth"`
	MaxNodes           int  `mapstructure:"max-nodes"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

func Defaults() Config {
	return Config{
		Format:             FormatMarkdown,
		IncludeProperties:  true,
		EnableSanitization: true,
		MaxDepth:           graph.DefaultMaxDepth,
		MaxNodes:           graph.DefaultMaxNodes,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyInput, d.Input)
	v.SetDefault(KeyRoot, d.Root)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyTemplate, d.Template)
	v.SetDefault(KeyInstruction, d.Instruction)
	v.SetDefault(KeyClipboard, d.Clipboard)
	v.SetDefault(KeyStdout, d.Stdout)
	v.SetDefault(KeyIncludeProperties, d.IncludeProperties)
	v.SetDefault(KeyIncludeMetadata, d.IncludeMetadata)
	v.SetDefault(KeyEnableSanitization, d.EnableSanitization)
	v.SetDefault(KeyEnableParallel, d.EnableParallel)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyMaxDepth, d.MaxDepth)
	v.SetDefault(KeyMaxNodes, d.MaxNodes)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes the merged settings. An
// explicit path must exist; the default notion2md.yaml may be absent.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Input, validation.Required),
		validation.Field(&c.Root, validation.By(validRoot)),
		validation.Field(&c.Format, validation.Required, validation.In(FormatMarkdown, FormatHTML)),
		validation.Field(&c.Concurrency, validation.Min(0)),
		validation.Field(&c.MaxDepth, validation.Min(0)),
		validation.Field(&c.MaxNodes, validation.Min(0)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
}

func validRoot(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := notion.ParseID(s); err != nil {
		return validation.NewError("validation_invalid_notion_id", err.Error())
	}
	return nil
}

// RootID parses Root. The zero ID is returned when Root is empty.
func (c Config) RootID() (notion.ID, error) {
	if strings.TrimSpace(c.Root) == "" {
		return "", nil
	}
	return notion.ParseID(c.Root)
}

func (c Config) Limits() graph.Limits {
	return graph.Limits{MaxDepth: c.MaxDepth, MaxNodes: c.MaxNodes}
}
