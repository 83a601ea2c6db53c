// Package config loads the analyzer settings file.
package config

import (
	"os"
	"path/filepath"

	"cool-semant/semant"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// FileName is the settings file looked up next to the input program.
const FileName = "coolsemant.toml"

// LogLevels lists the accepted values of output.log-level, quietest first.
var LogLevels = []string{"silent", "error", "warn", "verbose"}

type Config struct {
	Semant SemantConfig `toml:"semant"`
	Output OutputConfig `toml:"output"`
}

// SemantConfig selects the checking rules. All false gives the lenient
// defaults.
type SemantConfig struct {
	StrictDispatch     bool `toml:"strict-dispatch"`
	StrictNames        bool `toml:"strict-names"`
	JoinBranches       bool `toml:"join-branches"`
	CheckMethodReturns bool `toml:"check-method-returns"`
}

type OutputConfig struct {
	LogLevel string `toml:"log-level"`
	// DumpAST is the path of the annotated AST dump, empty for none.
	DumpAST string `toml:"dump-ast,omitempty"`
	// EmitLayout is the path of the class layout module, empty for none.
	EmitLayout   string `toml:"emit-layout,omitempty"`
	TargetTriple string `toml:"target-triple,omitempty"`
}

func Default() *Config {
	return &Config{Output: OutputConfig{LogLevel: "verbose"}}
}

// Load reads the settings file at path. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(buff, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if cfg.Output.LogLevel == "" {
		cfg.Output.LogLevel = Default().Output.LogLevel
	}
	if !validLogLevel(cfg.Output.LogLevel) {
		return nil, errors.Errorf("config %s: unknown log level %q", path, cfg.Output.LogLevel)
	}
	return cfg, nil
}

// Find returns the settings file in the directory of input, if there is one.
func Find(input string) (string, bool) {
	path := filepath.Join(filepath.Dir(input), FileName)
	finfo, err := os.Stat(path)
	if err != nil || finfo.IsDir() {
		return "", false
	}
	return path, true
}

func validLogLevel(level string) bool {
	for _, l := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// AnalyzerOptions converts the [semant] section.
func (c *Config) AnalyzerOptions() semant.Options {
	return semant.Options{
		StrictDispatch:     c.Semant.StrictDispatch,
		StrictNames:        c.Semant.StrictNames,
		JoinBranches:       c.Semant.JoinBranches,
		CheckMethodReturns: c.Semant.CheckMethodReturns,
	}
}
