package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/romilpunetha/tao/internal/registry"
)

// ConfigName is the base name of the optional project config file.
const ConfigName = "taogen"

// Config is the resolved configuration for one run.
type Config struct {
	Root     string
	Layout   registry.Layout
	Compiler string // Thrift compiler binary
	File     string // config file that was read, empty when none
}

// LoadConfig resolves the configuration for the project at root. Values come
// from, in increasing precedence: built-in defaults, taogen.yml, and TAOGEN_
// environment variables (a .env file at root is loaded into the environment
// first). The module path is read from go.mod unless "module" is set.
func LoadConfig(root string) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if err := loadDotEnv(abs); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(abs)

	v.SetEnvPrefix("TAOGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := registry.DefaultLayout("")
	v.SetDefault("module", "")
	v.SetDefault("paths.schemas", defaults.Schemas)
	v.SetDefault("paths.entities", defaults.Entities)
	v.SetDefault("paths.entity_types", defaults.EntityTypes)
	v.SetDefault("paths.manifest", defaults.Manifest)
	v.SetDefault("paths.models", defaults.Models)
	v.SetDefault("paths.entities_registry", defaults.EntitiesRegistry)
	v.SetDefault("thrift.namespace", defaults.Namespace)
	v.SetDefault("thrift.out", defaults.ThriftOut)
	v.SetDefault("thrift.compiler", "thrift")

	cfg := &Config{Root: abs}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s.yml: %w", ConfigName, err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	module := v.GetString("module")
	if module == "" {
		info, err := DetectModule(abs)
		if err != nil {
			return nil, err
		}
		module = info.Path
	}

	cfg.Compiler = v.GetString("thrift.compiler")
	cfg.Layout = registry.Layout{
		Module:           module,
		Schemas:          v.GetString("paths.schemas"),
		Entities:         v.GetString("paths.entities"),
		EntityTypes:      v.GetString("paths.entity_types"),
		Manifest:         v.GetString("paths.manifest"),
		Models:           v.GetString("paths.models"),
		EntitiesRegistry: v.GetString("paths.entities_registry"),
		ThriftOut:        v.GetString("thrift.out"),
		Namespace:        v.GetString("thrift.namespace"),
	}

	if err := validateLayout(cfg.Layout); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(root string) error {
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	return nil
}

func validateLayout(l registry.Layout) error {
	paths := map[string]string{
		"paths.schemas":           l.Schemas,
		"paths.entities":          l.Entities,
		"paths.entity_types":      l.EntityTypes,
		"paths.manifest":          l.Manifest,
		"paths.models":            l.Models,
		"paths.entities_registry": l.EntitiesRegistry,
		"thrift.out":              l.ThriftOut,
	}
	for key, p := range paths {
		if p == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return fmt.Errorf("%s must be a relative path inside the project, got %q", key, p)
		}
	}

	if path.Dir(l.EntityTypes) != path.Dir(l.Models) {
		return fmt.Errorf("paths.entity_types and paths.models must be in the same package directory (%s vs %s)",
			path.Dir(l.EntityTypes), path.Dir(l.Models))
	}
	if path.Dir(l.EntitiesRegistry) != path.Clean(l.Entities) {
		return fmt.Errorf("paths.entities_registry must be inside paths.entities (%s)", l.Entities)
	}
	if l.Namespace == "" {
		return fmt.Errorf("thrift.namespace must not be empty")
	}
	return nil
}

// Abs returns the absolute filesystem path of a project-relative path.
func (c *Config) Abs(rel string) string {
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}
