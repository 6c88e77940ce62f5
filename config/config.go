// Package config reads the YAML configuration shared by the CLI and the
// server.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/stepbot/pattern/command"
	"github.com/stepbot/pattern/noteskin"
	"github.com/stepbot/pattern/render"
)

type Config struct {
	Listen          string                `yaml:"listen" validate:"required,hostname_port"`
	LogLevel        string                `yaml:"log_level" validate:"oneof=debug info warn error"`
	DefaultNoteskin string                `yaml:"default_noteskin"`
	Limits          render.Limits         `yaml:"limits"`
	Noteskins       []noteskin.Definition `yaml:"noteskins,omitempty" validate:"dive"`
	// Builtin adds the procedurally drawn noteskins to the ones listed in
	// Noteskins. A listed noteskin with the same name wins.
	Builtin           bool `yaml:"builtin"`
	BuiltinResolution int  `yaml:"builtin_resolution" validate:"gte=0,lte=1024"`
}

//go:embed default.yml
var defaultYml []byte

var validate = validator.New()

// BuiltinNames are the names of the builtin noteskins, by family.
var BuiltinNames = map[noteskin.Family]string{
	noteskin.FamilyLDUR:     "arrows",
	noteskin.FamilyMonoLDUR: "mono",
	noteskin.FamilyPump:     "pump",
	noteskin.FamilyBar:      "bars",
}

// Default returns the configuration used when there is no configuration
// file.
func Default() *Config {
	var c Config
	if err := decode(bytes.NewReader(defaultYml), &c); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return &c
}

// Load reads the configuration file at path on top of the defaults. An
// empty path or a missing file gives the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()
	if err := decode(f, c); err != nil {
		return nil, fmt.Errorf("could not read config %v: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", path, err)
	}
	return c, nil
}

// decode rejects unknown keys, so that typos in the file don't go unnoticed.
func decode(r io.Reader, c *Config) error {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the field constraints, that noteskin names can be told
// apart from the rest of a command and that the default noteskin exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for _, def := range c.Definitions() {
		if command.Reserved(def.Name) {
			return fmt.Errorf("noteskin name %q can't be told apart from pattern text or a modifier", def.Name)
		}
	}
	if c.DefaultNoteskin == "" {
		return nil
	}
	for _, def := range c.Definitions() {
		if strings.EqualFold(def.Name, c.DefaultNoteskin) {
			return nil
		}
	}
	return fmt.Errorf("default noteskin %q is not defined", c.DefaultNoteskin)
}

// Definitions returns the configured noteskins, followed by the builtin ones
// if they are enabled.
func (c *Config) Definitions() []noteskin.Definition {
	ret := append([]noteskin.Definition(nil), c.Noteskins...)
	if !c.Builtin {
		return ret
	}
	taken := map[string]bool{}
	for _, def := range ret {
		taken[strings.ToLower(def.Name)] = true
	}
	for _, family := range noteskin.Families {
		name := BuiltinNames[family]
		if taken[name] {
			continue
		}
		ret = append(ret, noteskin.Definition{
			Name:       name,
			Family:     family,
			Builtin:    true,
			Resolution: c.BuiltinResolution,
		})
	}
	return ret
}

// Registry loads every noteskin of the configuration.
func (c *Config) Registry() (*noteskin.Registry, error) {
	return noteskin.NewRegistry(c.Definitions(), c.DefaultNoteskin)
}

// SlogLevel returns the log level, or info if it is not recognized.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
