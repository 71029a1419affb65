package server

import (
	"github.com/zucenko/trails/model"
)

// sessionSink collects engine events into the session's pending message.
// The session loop flushes it once the engine call returns, so a client
// always sees moves before the turn sweep they caused.
type sessionSink struct {
	gs *GameSession
}

func (s sessionSink) SpawnPlayer(p model.Player) {
	s.gs.pending.Spawns = append(s.gs.pending.Spawns, p)
}

func (s sessionSink) MovePlayer(p model.Player) {
	s.gs.pending.Moves = append(s.gs.pending.Moves, model.MoveResult{
		Target:  p.Position,
		Success: true,
		Player:  p,
	})
}

func (s sessionSink) EliminatePlayer(p model.Player) {
	s.gs.pending.Eliminations = append(s.gs.pending.Eliminations, p)
}

func (s sessionSink) AdvanceTurn(turn int, cleared []model.Point) {
	s.gs.pending.Turns = append(s.gs.pending.Turns, model.TurnAdvance{Turn: turn, Cleared: cleared})
}

// flush hands back what was collected and tags it with the observer of the
// player that caused it.
func (gs *GameSession) flush(source model.PlayerID) model.ServerMessage {
	m := gs.pending
	gs.pending = model.ServerMessage{}
	if ps := gs.playerSession(source); ps != nil {
		m.Source = ps.Observer.ID()
	}
	return m
}

func empty(m model.ServerMessage) bool {
	return len(m.Setup) == 0 && len(m.Spawns) == 0 && len(m.Moves) == 0 &&
		len(m.Turns) == 0 && len(m.Eliminations) == 0 && len(m.GameOver) == 0
}
