// Package config loads spanloft parameter files. A file is YAML laid over
// Default, so a partial file only changes the keys it names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chazu/spanloft/pkg/parts"
	"github.com/chazu/spanloft/pkg/span"
	"gopkg.in/yaml.v3"
)

// Kernel backend names.
const (
	BackendAuto = "auto"
	BackendSdfx = "sdfx"
	BackendMesh = "mesh"
)

// DefaultMeshCells is the sdfx renderer resolution along the longest axis.
const DefaultMeshCells = 200

// ErrInvalid is wrapped by every Validate failure that is not already a
// domain parameter error.
var ErrInvalid = errors.New("config: invalid")

// KernelConfig selects and tunes the geometry backend.
type KernelConfig struct {
	Backend   string `yaml:"backend"`    // auto, sdfx or mesh
	MeshCells int    `yaml:"mesh_cells"` // sdfx marching-cubes cells
}

// AssemblyConfig holds the assembly settings that are not body or blade.
type AssemblyConfig struct {
	Yaw float64 `yaml:"yaw"` // degrees about Z
}

// Config is a complete LPT blade parameter set.
type Config struct {
	Kernel   KernelConfig     `yaml:"kernel"`
	Blade    span.Params      `yaml:"blade"`
	Body     parts.BodyParams `yaml:"body"`
	Assembly AssemblyConfig   `yaml:"assembly"`
}

// Default returns the parameters of the reference LPT blade.
func Default() Config {
	a := parts.DefaultAssembly()
	return Config{
		Kernel:   KernelConfig{Backend: BackendAuto, MeshCells: DefaultMeshCells},
		Blade:    a.Blade,
		Body:     a.Body,
		Assembly: AssemblyConfig{Yaw: a.Yaw},
	}
}

// Load reads path over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := Parse(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping any field the document omits.
// Unknown keys are rejected so typos do not pass silently.
func Parse(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// BladeAssembly returns the blade assembly the config describes.
func (c Config) BladeAssembly() parts.BladeAssembly {
	return parts.BladeAssembly{Body: c.Body, Blade: c.Blade, Yaw: c.Assembly.Yaw}
}

// Validate checks the kernel settings, then delegates to the domain
// validators.
func (c Config) Validate() error {
	switch c.Kernel.Backend {
	case BackendAuto, BackendSdfx, BackendMesh:
	default:
		return fmt.Errorf("%w: kernel backend %q, want auto, sdfx or mesh", ErrInvalid, c.Kernel.Backend)
	}
	if c.Kernel.MeshCells < 8 {
		return fmt.Errorf("%w: mesh_cells %d must be at least 8", ErrInvalid, c.Kernel.MeshCells)
	}
	return c.BladeAssembly().Validate()
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
