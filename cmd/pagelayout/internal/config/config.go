// Package config loads pagelayout.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/props"
)

// FileName is the config file looked up in the project root.
const FileName = "pagelayout.yaml"

// Environment variables.
const (
	EnvConfig = "PAGELAYOUT_CONFIG"
	EnvAddr   = "PAGELAYOUT_ADDR"
)

// DefaultAddr is the serve listen address.
const DefaultAddr = ":8080"

// Config represents the optional pagelayout.yaml configuration.
type Config struct {
	Page   PageConfig   `yaml:"page"`
	Server ServerConfig `yaml:"server"`
}

// PageConfig describes the page to render.
type PageConfig struct {
	ID               string           `yaml:"id,omitempty"`
	Flags            props.Flags      `yaml:"flags,omitempty"`
	Ads              *props.AdsConfig `yaml:"ads,omitempty"`
	DefaultContainer *bool            `yaml:"defaultContainer,omitempty"`
	BodyColspan      string           `yaml:"bodyColspan,omitempty"`
	HeaderColspan    string           `yaml:"headerColspan,omitempty"`
	Props            map[string]any   `yaml:"props,omitempty"`
	Content          []Block          `yaml:"content,omitempty"`
}

// Block is one piece of article content.
type Block struct {
	// Type is paragraph, heading, slot, text or container.
	Type string `yaml:"type"`
	Text string `yaml:"text,omitempty"`
	// Name names a slot block.
	Name string `yaml:"name,omitempty"`
	// Class is added to the block's element.
	Class   string  `yaml:"class,omitempty"`
	Content []Block `yaml:"content,omitempty"`
}

// ServerConfig configures serve.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	Page       PageConfig
	Addr       string
}

// LoadEnv loads dir/.env into the environment if present. Variables already
// set are kept.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// LoadOptional reads dir/pagelayout.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks flag names, colspans and content block types.
func (c *Config) Validate() error {
	for name := range c.Page.Flags {
		if !isFlag(name) {
			return fmt.Errorf("unknown flag %q", name)
		}
	}
	for _, spec := range []string{c.Page.BodyColspan, c.Page.HeaderColspan} {
		if spec == "" {
			continue
		}
		if _, err := grid.ParseColspan(spec); err != nil {
			return err
		}
	}
	return validateBlocks(c.Page.Content)
}

func isFlag(name string) bool {
	for _, flag := range props.FlagNames {
		if flag == name {
			return true
		}
	}
	return false
}

func validateBlocks(blocks []Block) error {
	for i, b := range blocks {
		switch b.Type {
		case "paragraph", "heading", "text":
		case "slot":
			if b.Name == "" {
				return fmt.Errorf("content[%d]: slot needs a name", i)
			}
		case "container":
			if err := validateBlocks(b.Content); err != nil {
				return fmt.Errorf("content[%d]: %w", i, err)
			}
		default:
			return fmt.Errorf("content[%d]: unknown block type %q", i, b.Type)
		}
	}
	return nil
}

// Resolve loads the config (configPath, else $PAGELAYOUT_CONFIG, else
// dir/pagelayout.yaml if present) and resolves defaults. dir need not be a
// Go module; without go.mod the page id defaults to the directory name.
func Resolve(dir, configPath string) (*Resolved, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}

	var (
		cfg *Config
		err error
	)
	if configPath != "" {
		cfg, err = Load(configPath)
	} else {
		cfg, err = LoadOptional(dir)
	}
	if err != nil {
		return nil, err
	}

	modulePath, _ := ModulePath(dir)

	page := cfg.Page
	if strings.TrimSpace(page.ID) == "" {
		page.ID = DefaultID(modulePath, dir)
	}
	if page.BodyColspan == "" {
		page.BodyColspan = grid.DefaultColspan
	}
	if page.HeaderColspan == "" {
		page.HeaderColspan = grid.DefaultColspan
	}

	addr := cfg.Server.Addr
	if env := os.Getenv(EnvAddr); env != "" {
		addr = env
	}
	if addr == "" {
		addr = DefaultAddr
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		Page:       page,
		Addr:       addr,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod.
// It returns the current directory when there is none.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// ModulePath returns the module path declared in dir/go.mod.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

// DefaultID derives a page id from the last element of the module path,
// without a major version suffix, falling back to the directory name.
func DefaultID(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		prefix, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "page"
	}
	return base
}
