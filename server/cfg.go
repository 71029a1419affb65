package server

import (
	"fmt"
	"os"

	"github.com/zucenko/trails/engine"
	"github.com/zucenko/trails/model"
	"gopkg.in/yaml.v3"
)

const DefaultPort = "8080"

type Config struct {
	Gameplay GameplayConfig `yaml:"gameplay"`
	Server   ServerConfig   `yaml:"server"`
}

type GameplayConfig struct {
	MapSize      int     `yaml:"map_size"`
	CellLifetime int     `yaml:"cell_lifetime"`
	Players      int     `yaml:"players"` // per session
	Entries      [][]int `yaml:"entries"` // [[x, y], ...]
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if cfg.Gameplay.Players == 0 {
		cfg.Gameplay.Players = 2
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultPort
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Gameplay.Players < 1 {
		return fmt.Errorf("%w: players %d", engine.ErrInvalidConfig, c.Gameplay.Players)
	}
	for _, e := range c.Gameplay.Entries {
		if len(e) != 2 {
			return fmt.Errorf("%w: entry %v is not an [x, y] pair", engine.ErrInvalidConfig, e)
		}
	}
	return c.Engine().Validate()
}

// Engine converts the gameplay section. Call it on validated configs only.
func (c Config) Engine() engine.Config {
	entries := make([]model.Point, 0, len(c.Gameplay.Entries))
	for _, e := range c.Gameplay.Entries {
		if len(e) == 2 {
			entries = append(entries, model.Point{X: e[0], Y: e[1]})
		}
	}
	return engine.Config{
		MapSize:      c.Gameplay.MapSize,
		CellLifetime: c.Gameplay.CellLifetime,
		Entries:      entries,
	}
}
