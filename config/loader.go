package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/seqkit/logger"
)

// FileSystem abstracts the file operations of the loader so tests can fake them.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Files holds the resolved config and env file paths; empty means none found.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config.yml and .env files for a named program.
type Resolver struct {
	FileSystem FileSystem
}

// Resolve returns explicit paths when set, otherwise the first candidates that exist.
func (r *Resolver) Resolve(name string, explicit Files) Files {
	files := explicit
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(name))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(name))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// searchDirs lists directories in lookup order: the program's cmd dir, the
// config dir, then the working directory and its parents.
func searchDirs(name string) []string {
	var dirs []string
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		dirs = append(dirs, filepath.Join(up, "cmd", name))
	}
	for _, up := range []string{".", ".."} {
		dirs = append(dirs, filepath.Join(up, "config"))
	}
	return append(dirs, ".", "..")
}

func configCandidates(name string) []string {
	dirs := searchDirs(name)
	paths := make([]string, 0, len(dirs)*2)
	for _, d := range dirs {
		paths = append(paths, filepath.Join(d, "config.yml"), filepath.Join(d, "config.yaml"))
	}
	return paths
}

func envCandidates(name string) []string {
	dirs := searchDirs(name)
	paths := make([]string, 0, len(dirs)*2)
	for _, file := range []string{".env." + name, ".env"} {
		for _, d := range dirs {
			paths = append(paths, filepath.Join(d, file))
		}
	}
	return paths
}

// LoaderConfig holds loader dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	Files      Files
}

// LoaderOption is a functional option for LoadConfig and Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Files.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Files.EnvFile = path }
}

// Load reads the configuration of the named program, applies defaults and validates it.
func Load(name string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig(name, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig unmarshals configuration for the named program into cfg without
// applying defaults. Missing files are not an error; unreadable ones are
// logged and skipped.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.Resolve(name, lc.Files)
	log := logger.Get("config")

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("failed to read config file", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}
	return nil
}

// bindEnv overlays KEY=value pairs onto every nested key they could address.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an environment key onto candidate config keys:
//
//	QUERY_BUFFER_CAPACITY -> [query_buffer_capacity, query.buffer.capacity, query.buffer_capacity, query_buffer.capacity]
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."))
	}
	return dedupe(variants)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
