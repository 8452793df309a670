package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const FileName = "awards.toml"

const (
	DefaultListen    = ":3000"
	DefaultDatabase  = "file:awards?mode=memory&cache=shared"
	DefaultRoot      = "data"
	DefaultSeparator = ";"
)

type Config struct {
	Listen   string  `toml:"listen"`
	Database string  `toml:"database"`
	Import   *Import `toml:"import"`
}

// Import controls which delimited catalogue files are loaded at startup
type Import struct {
	Enabled   bool     `toml:"enabled"`
	Root      string   `toml:"root"`
	Patterns  []string `toml:"patterns"`
	Separator string   `toml:"separator"`
}

// SeparatorRune returns the first rune of Separator, or ';' when unset
func (i *Import) SeparatorRune() rune {
	for _, r := range i.Separator {
		return r
	}
	return ';'
}

// FileReader abstracts reading the config file so it can come from somewhere other than disk
type FileReader interface {
	ReadFile(path string) ([]byte, error)
	PathExists(path string) bool
}

type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFileReader) PathExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func Default() *Config {
	return &Config{
		Listen:   DefaultListen,
		Database: DefaultDatabase,
		Import:   defaultImport(),
	}
}

func defaultImport() *Import {
	return &Import{
		Enabled:   true,
		Root:      DefaultRoot,
		Patterns:  []string{"**/*.csv"},
		Separator: DefaultSeparator,
	}
}

// ReadConfig reads awards.toml from dir. A missing file yields the defaults without error;
// an unreadable or invalid file yields the defaults together with the error.
// A nil reader reads from disk.
func ReadConfig(dir string, reader FileReader) (*Config, error) {
	if reader == nil {
		reader = osFileReader{}
	}

	defaultConfig := Default()

	defaultConfig.resolve(dir)

	fileName := filepath.Join(dir, FileName)
	if !reader.PathExists(fileName) {
		return defaultConfig, nil
	}
	file, err := reader.ReadFile(fileName)
	if err != nil {
		return defaultConfig, err
	}
	config := Default()
	err = toml.Unmarshal(file, config)
	if err != nil {
		return defaultConfig, err
	}
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.Database == "" {
		config.Database = DefaultDatabase
	}
	if config.Import == nil {
		config.Import = defaultImport()
	}
	if config.Import.Root == "" {
		config.Import.Root = DefaultRoot
	}
	if len(config.Import.Patterns) == 0 {
		config.Import.Patterns = []string{"**/*.csv"}
	}
	if config.Import.Separator == "" {
		config.Import.Separator = DefaultSeparator
	}
	config.resolve(dir)
	return config, nil
}

// relative import roots are resolved against the config directory
func (c *Config) resolve(dir string) {
	if !filepath.IsAbs(c.Import.Root) {
		c.Import.Root = filepath.Join(dir, c.Import.Root)
	}
}
