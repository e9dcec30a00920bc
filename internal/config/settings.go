package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable that overrides a
// runtime setting, e.g. REVBENCH_HYPERFINE.
const EnvPrefix = "REVBENCH"

// Report format identifiers accepted in Settings.ReportFormats.
const (
	ReportMarkdown = "markdown"
	ReportJSON     = "json"
	ReportBenchfmt = "benchfmt"
	ReportMetrics  = "metrics"
)

// Settings are the runtime options of a run, as opposed to the benchmark
// configuration document.
type Settings struct {
	RepositoryPath  string   `mapstructure:"repository" validate:"required"`
	CLIPath         string   `mapstructure:"cli_path" validate:"required"`
	CLIRunner       string   `mapstructure:"cli_runner" validate:"required"`
	CLIName         string   `mapstructure:"cli_name" validate:"required"`
	HyperfineBinary string   `mapstructure:"hyperfine" validate:"required"`
	NPMBinary       string   `mapstructure:"npm" validate:"required"`
	GitBinary       string   `mapstructure:"git" validate:"required"`
	ToolEnv         []string `mapstructure:"tool_env" validate:"dive,contains=="`
	LogLevel        string   `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string   `mapstructure:"log_format" validate:"oneof=auto text json"`
	ResultPrefix    string   `mapstructure:"result_prefix" validate:"required,excludesall=/\\"`
	ReportFormats   []string `mapstructure:"reports" validate:"dive,oneof=markdown json benchfmt metrics"`
	// ReportDir overrides where reports are written. Empty means each
	// project directory.
	ReportDir string `mapstructure:"report_dir"`
}

// CLIAbsPath returns the path of the CLI under test inside the repository.
func (s Settings) CLIAbsPath() string {
	if filepath.IsAbs(s.CLIPath) {
		return s.CLIPath
	}
	return filepath.Join(s.RepositoryPath, s.CLIPath)
}

var settingsValidate = validator.New()

// SetSettingDefaults registers the default value of every setting.
func SetSettingDefaults(v *viper.Viper) {
	v.SetDefault("repository", ".")
	v.SetDefault("cli_path", "packages/cli/bin/ui5.cjs")
	v.SetDefault("cli_runner", "node")
	v.SetDefault("cli_name", "ui5")
	v.SetDefault("hyperfine", "hyperfine")
	v.SetDefault("npm", "npm")
	v.SetDefault("git", "git")
	v.SetDefault("tool_env", []string{"UI5_CLI_NO_LOCAL=X"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")
	v.SetDefault("result_prefix", "benchmark-results")
	v.SetDefault("reports", []string{ReportMarkdown, ReportJSON, ReportBenchfmt, ReportMetrics})
	v.SetDefault("report_dir", "")
}

// NewViper returns a viper instance with defaults and environment
// overrides wired in.
func NewViper() *viper.Viper {
	v := viper.New()
	SetSettingDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads environment variables from the given files. Missing
// files are ignored; with no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadSettings reads and validates Settings from v.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decoding settings: %w", err)
	}
	s.ToolEnv = splitList(s.ToolEnv)
	s.ReportFormats = splitList(s.ReportFormats)
	if err := settingsValidate.Struct(s); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	abs, err := filepath.Abs(s.RepositoryPath)
	if err != nil {
		return s, fmt.Errorf("resolving repository path: %w", err)
	}
	s.RepositoryPath = abs
	return s, nil
}

// splitList flattens comma separated entries, which is how list settings
// arrive from environment variables.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
