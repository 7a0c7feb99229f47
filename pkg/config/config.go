// Package config loads the YAML scene configuration used by the facet CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/facet/pkg/assets"
	"github.com/taigrr/facet/pkg/math3d"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Shader names.
const (
	ShaderPBR         = "pbr"
	ShaderPassThrough = "passthrough"
)

// Config is the scene and renderer configuration.
type Config struct {
	Width  int `yaml:"width"`  // Headless render width in pixels
	Height int `yaml:"height"` // Headless render height in pixels

	Camera Camera `yaml:"camera"`

	SpinSpeed  float64  `yaml:"spin_speed"` // Turntable speed, radians per second
	Shader     string   `yaml:"shader"`
	Bilinear   bool     `yaml:"bilinear"`
	Checker    bool     `yaml:"checker"` // Checker base color for untextured materials
	Background [3]uint8 `yaml:"background"`

	KillTime Duration `yaml:"kill_time"` // Idle time before assets are evicted
	LogLevel string   `yaml:"log_level"`
}

// Camera places the viewer. A zero Position frames the model automatically.
type Camera struct {
	Position [3]float64 `yaml:"position"`
	FOV      float64    `yaml:"fov"` // Vertical, degrees
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:  512,
		Height: 512,
		Camera: Camera{
			FOV:  60,
			Near: 0.1,
			Far:  100,
		},
		SpinSpeed:  0.8,
		Shader:     ShaderPBR,
		Bilinear:   true,
		Background: [3]uint8{30, 30, 40},
		KillTime:   Duration(assets.DefaultKillTime),
		LogLevel:   "warn",
	}
}

// Load reads path over the defaults and validates the result. Keys absent
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges and names.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height))
	}
	if !(c.Camera.FOV > 0 && c.Camera.FOV < 180) {
		errs = append(errs, fmt.Errorf("%w: fov %v not in (0, 180)", ErrInvalid, c.Camera.FOV))
	}
	if !(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near) {
		errs = append(errs, fmt.Errorf("%w: clip planes near=%v far=%v", ErrInvalid, c.Camera.Near, c.Camera.Far))
	}
	if math.IsNaN(c.SpinSpeed) || math.IsInf(c.SpinSpeed, 0) {
		errs = append(errs, fmt.Errorf("%w: spin speed %v", ErrInvalid, c.SpinSpeed))
	}
	switch c.Shader {
	case ShaderPBR, ShaderPassThrough:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown shader %q", ErrInvalid, c.Shader))
	}
	if c.KillTime < 0 {
		errs = append(errs, fmt.Errorf("%w: negative kill time", ErrInvalid))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel as a slog level name (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel)))
	return l, err
}

// FOVRadians returns the vertical field of view in radians.
func (c Camera) FOVRadians() float64 {
	return c.FOV * math.Pi / 180
}

// Eye returns Position as a vector and whether it was set.
func (c Camera) Eye() (math3d.Vec3, bool) {
	p := math3d.V3(c.Position[0], c.Position[1], c.Position[2])
	return p, c.Position != [3]float64{}
}

// BackgroundRGB returns Background packed as 0xRRGGBB.
func (c Config) BackgroundRGB() uint32 {
	return uint32(c.Background[0])<<16 | uint32(c.Background[1])<<8 | uint32(c.Background[2])
}
