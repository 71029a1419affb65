package engine

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/trails/model"
)

// Engine holds the authoritative state of one game. It is not safe for
// concurrent use; a single goroutine has to own it.
type Engine struct {
	cfg  Config
	turn int
	grid *model.Grid

	players map[model.PlayerID]*model.Player
	order   []model.PlayerID

	eliminated      map[model.PlayerID]bool
	eliminatedOrder []model.PlayerID

	gameOver bool

	sink Sink
	log  *log.Entry
}

type Option func(*Engine)

func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

func WithLogger(l *log.Entry) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        cfg,
		turn:       1, // players start at 0, so nobody counts as moved
		grid:       model.NewGrid(cfg.MapSize),
		players:    make(map[model.PlayerID]*model.Player),
		eliminated: make(map[model.PlayerID]bool),
		sink:       NopSink{},
		log:        log.WithField("component", "engine"),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Spawn(id model.PlayerID, name string) error {
	if _, found := e.players[id]; found {
		return fmt.Errorf("spawn %q: %w", id, ErrDuplicatePlayer)
	}
	entries := e.cfg.entries()
	point := entries[len(e.order)%len(entries)]

	p := &model.Player{ID: id, Name: name}
	e.grid.Place(point, id, e.cfg.CellLifetime)
	e.players[id] = p
	e.order = append(e.order, id)
	p.Move(point, e.turn, false)

	e.sink.SpawnPlayer(*p)
	e.log.Infof("Player %s joined at %v", p.Name, point)
	return nil
}

func (e *Engine) CanMove(to model.Point, id model.PlayerID) bool {
	p, found := e.players[id]
	if !found || e.eliminated[id] {
		return false
	}
	return e.isPlayersTurn(p) && e.pointIsMovable(to, p)
}

func (e *Engine) isPlayersTurn(p *model.Player) bool {
	return !p.HasMovedThisTurn(e.turn)
}

func (e *Engine) pointIsMovable(to model.Point, p *model.Player) bool {
	return e.grid.InBounds(to) &&
		p.Position.Adjacent(to) &&
		!e.grid.Occupied(to)
}

// Move applies a move that CanMove already accepted. It does not validate
// again.
func (e *Engine) Move(to model.Point, id model.PlayerID) error {
	p, found := e.players[id]
	if !found {
		return fmt.Errorf("move %q to %v: %w", id, to, ErrUnknownPlayer)
	}
	e.grid.Place(to, id, e.cfg.CellLifetime)
	p.Move(to, e.turn, true)

	e.CheckEliminated(id)
	for _, other := range e.order {
		if other != id && !e.eliminated[other] && !e.players[other].HasMovedThisTurn(e.turn) {
			e.CheckEliminated(other)
		}
	}
	if e.AllPlayersMoved() {
		e.advanceTurn()
	}

	e.sink.MovePlayer(*p)
	return nil
}

// CheckEliminated reports whether the player is boxed in: none of the nine
// points around them, their own included, is free and in bounds. The turn
// is not taken into account.
func (e *Engine) CheckEliminated(id model.PlayerID) bool {
	p, found := e.players[id]
	if !found {
		return false
	}
	if e.eliminated[id] {
		return true
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if e.pointIsMovable(p.Position.Add(dx, dy), p) {
				return false
			}
		}
	}
	e.eliminated[id] = true
	e.eliminatedOrder = append(e.eliminatedOrder, id)
	e.log.Infof("Game over for %s!", p.Name)
	e.sink.EliminatePlayer(*p)
	return true
}

// AllPlayersMoved ignores eliminated players, they never move again.
func (e *Engine) AllPlayersMoved() bool {
	for _, id := range e.order {
		if e.eliminated[id] {
			continue
		}
		if !e.players[id].HasMovedThisTurn(e.turn) {
			return false
		}
	}
	return true
}

func (e *Engine) advanceTurn() {
	cleared := e.grid.DecayAndSweep()
	e.turn++
	e.log.WithField("cleared", len(cleared)).Infof("Turn: %d", e.turn)
	e.sink.AdvanceTurn(e.turn, cleared)
}

// IsGameOver is only ever set by End. Who won is for the caller to decide
// from Active and Eliminated.
func (e *Engine) IsGameOver() bool {
	return e.gameOver
}

func (e *Engine) End() {
	if !e.gameOver {
		e.log.Info("game ended")
	}
	e.gameOver = true
}

func (e *Engine) Turn() int {
	return e.turn
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Player(id model.PlayerID) (model.Player, bool) {
	p, found := e.players[id]
	if !found {
		return model.Player{}, false
	}
	return *p, true
}

// Players returns copies in join order.
func (e *Engine) Players() []model.Player {
	players := make([]model.Player, 0, len(e.order))
	for _, id := range e.order {
		players = append(players, *e.players[id])
	}
	return players
}

func (e *Engine) Eliminated() []model.PlayerID {
	return append([]model.PlayerID(nil), e.eliminatedOrder...)
}

// Active lists players still in the game, in join order.
func (e *Engine) Active() []model.PlayerID {
	active := make([]model.PlayerID, 0, len(e.order))
	for _, id := range e.order {
		if !e.eliminated[id] {
			active = append(active, id)
		}
	}
	return active
}

// Grid is a copy, changing it does not touch the game.
func (e *Engine) Grid() *model.Grid {
	return e.grid.Snapshot()
}
