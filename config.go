package doomsie3d

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the viewer's tunable state. Field defaults track Doom's
// feel: 90 degree horizontal FOV, run speed in map units per second.
type Config struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FOVDegrees float64 `yaml:"fov"`
	Near       float64 `yaml:"near"`
	MoveSpeed  float64 `yaml:"move_speed"` // map units per second
	TurnSpeed  float64 `yaml:"turn_speed"` // degrees per second
	Map        string  `yaml:"map"`
	Overlay    bool    `yaml:"overlay"` // start with the debug map up
}

func DefaultConfig() Config {
	return Config{
		Width:      640,
		Height:     480,
		FOVDegrees: 90,
		Near:       4,
		MoveSpeed:  250,
		TurnSpeed:  120,
		Map:        "E1M1",
	}
}

// LoadConfig overlays a YAML file onto the defaults, so a config may
// name only the fields it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %q", path)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, errors.Errorf("config %q: resolution %dx%d is not positive", path, cfg.Width, cfg.Height)
	}
	if cfg.FOVDegrees <= 0 || cfg.FOVDegrees >= 180 {
		return cfg, errors.Errorf("config %q: fov %v out of range", path, cfg.FOVDegrees)
	}
	return cfg, nil
}
