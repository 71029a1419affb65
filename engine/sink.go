package engine

import "github.com/zucenko/trails/model"

// Sink receives what the engine accepted. Calls are fire-and-forget and
// happen after the state change.
type Sink interface {
	SpawnPlayer(p model.Player)
	MovePlayer(p model.Player)
	EliminatePlayer(p model.Player)
	AdvanceTurn(turn int, cleared []model.Point)
}

type NopSink struct{}

func (NopSink) SpawnPlayer(model.Player)       {}
func (NopSink) MovePlayer(model.Player)        {}
func (NopSink) EliminatePlayer(model.Player)   {}
func (NopSink) AdvanceTurn(int, []model.Point) {}
