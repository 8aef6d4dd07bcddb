package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// DefaultEnvFiles are read by Resolve when Options.EnvFiles is nil.
// Earlier files take precedence.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Options controls Resolve.
type Options struct {
	// Path is an optional YAML config file.
	Path string

	// EnvFiles are dotenv files layered under the process environment.
	// Missing files are skipped. Nil means DefaultEnvFiles.
	EnvFiles []string

	// Lookup reads the process environment. Nil means os.LookupEnv.
	Lookup LookupFunc
}

// Resolve builds the effective configuration: the YAML file if any, then
// environment overrides, then defaults. The process environment wins over
// dotenv files. The result is not validated.
func Resolve(opts Options) (*Config, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	files := opts.EnvFiles
	if files == nil {
		files = DefaultEnvFiles
	}

	dotenv, err := ReadEnvFiles(files...)
	if err != nil {
		return nil, err
	}
	lookup = layered(lookup, dotenv)

	cfg := &Config{}
	if opts.Path != "" {
		cfg, err = Load(opts.Path, lookup)
		if err != nil {
			return nil, err
		}
	}

	ApplyEnv(cfg, lookup)
	cfg.Defaults()
	return cfg, nil
}

// Load reads a YAML configuration file, expands ${VAR} references through
// lookup, and parses it into a Config.
func Load(path string, lookup LookupFunc) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw, lookup)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// ReadEnvFiles parses dotenv files into one map without touching the
// process environment. Missing files are skipped; for keys defined twice
// the earlier file wins.
func ReadEnvFiles(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", p, err)
		}
		for k, v := range vars {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

// layered consults primary first, then the dotenv values.
func layered(primary LookupFunc, dotenv map[string]string) LookupFunc {
	if len(dotenv) == 0 {
		return primary
	}
	return func(key string) (string, bool) {
		// An exported but empty variable does not mask the dotenv value.
		if v, ok := primary(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no value).
func expandEnv(raw []byte, lookup LookupFunc) ([]byte, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil

		if value, ok := lookup(name); ok {
			return []byte(value)
		}
		if hasDefault {
			return subs[2]
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
