package chroma

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valerio/go-chroma/chroma/display"
	"github.com/valerio/go-chroma/chroma/memory"
)

// Hardware model names accepted in configuration.
const (
	ModelAuto = "auto"
	ModelDMG  = "dmg"
	ModelCGB  = "cgb"
)

// Serial modes select what is plugged into the link port.
const (
	SerialNone = "none"
	SerialLog  = "log"
	SerialHost = "host"
	SerialJoin = "join"
)

var (
	ErrUnknownModel      = errors.New("unknown hardware model")
	ErrUnknownSerialMode = errors.New("unknown serial mode")
)

// SerialConfig configures the link port.
type SerialConfig struct {
	Mode    string `yaml:"mode"`
	Address string `yaml:"address"`
}

// Config holds the emulation settings. Zero values are not meaningful,
// start from DefaultConfig.
type Config struct {
	Model      string       `yaml:"model"`
	BootROM    string       `yaml:"boot_rom"`
	SavePath   string       `yaml:"save_path"`
	Serial     SerialConfig `yaml:"serial"`
	Audio      bool         `yaml:"audio"`
	FrameLimit bool         `yaml:"frame_limit"`

	Backend  string `yaml:"backend"`
	Scale    int    `yaml:"scale"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Model:      ModelAuto,
		Serial:     SerialConfig{Mode: SerialNone, Address: "127.0.0.1:5678"},
		Audio:      true,
		FrameLimit: true,
		Backend:    "terminal",
		Scale:      display.DefaultPixelScale,
		LogLevel:   "info",
	}
}

// LoadConfig reads a YAML file on top of the defaults. Keys missing from
// the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, _, err := ParseModel(c.Model); err != nil {
		return err
	}
	switch strings.ToLower(c.Serial.Mode) {
	case SerialNone, SerialLog, SerialHost, SerialJoin, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSerialMode, c.Serial.Mode)
	}
	return nil
}

// ParseModel resolves a model name. auto is true when the model should be
// picked from the cartridge header or boot image.
func ParseModel(name string) (model memory.Model, auto bool, err error) {
	switch strings.ToLower(name) {
	case ModelAuto, "":
		return memory.ModelDMG, true, nil
	case ModelDMG:
		return memory.ModelDMG, false, nil
	case ModelCGB, "gbc":
		return memory.ModelCGB, false, nil
	default:
		return memory.ModelDMG, false, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}
