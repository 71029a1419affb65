package engine

import (
	"errors"
	"fmt"

	"github.com/zucenko/trails/model"
)

var (
	ErrInvalidConfig   = errors.New("invalid gameplay config")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrDuplicatePlayer = errors.New("player already joined")
)

var DefaultEntry = model.Point{X: 0, Y: 2}

type Config struct {
	MapSize      int
	CellLifetime int
	// Entries are handed out to joining players round robin.
	// Empty means DefaultEntry.
	Entries []model.Point
}

func (c Config) Validate() error {
	if c.MapSize <= 0 {
		return fmt.Errorf("%w: map size %d", ErrInvalidConfig, c.MapSize)
	}
	if c.CellLifetime <= 0 {
		return fmt.Errorf("%w: cell lifetime %d", ErrInvalidConfig, c.CellLifetime)
	}
	bounds := model.Grid{Size: c.MapSize}
	for _, e := range c.entries() {
		if !bounds.InBounds(e) {
			return fmt.Errorf("%w: entry %v outside %dx%d map", ErrInvalidConfig, e, c.MapSize, c.MapSize)
		}
	}
	return nil
}

func (c Config) entries() []model.Point {
	if len(c.Entries) == 0 {
		return []model.Point{DefaultEntry}
	}
	return c.Entries
}
