// Package client talks to the game server over a websocket and keeps a
// local mirror of the map built from the server's messages.
package client

import (
	"encoding/gob"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/trails/model"
)

type Client struct {
	Conn *websocket.Conn

	Id           model.PlayerID
	Turn         int
	CellLifetime int
	Grid         *model.Grid
	Players      map[model.PlayerID]model.Player
	Eliminated   map[model.PlayerID]bool
	Over         bool
	Winner       model.PlayerID

	// ReadTimeout bounds every Receive, zero waits forever.
	ReadTimeout time.Duration
}

// Dial joins a game on the server at base, e.g. "ws://localhost:8080".
func Dial(base, name string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bad server url: %w", err)
	}
	u.Path = model.URI_WS
	u.RawQuery = url.Values{"name": {name}}.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	return New(conn), nil
}

func New(conn *websocket.Conn) *Client {
	return &Client{
		Conn:       conn,
		Players:    make(map[model.PlayerID]model.Player),
		Eliminated: make(map[model.PlayerID]bool),
	}
}

func (c *Client) Close() error {
	return c.Conn.Close()
}

func (c *Client) Move(to model.Point) error {
	w, err := c.Conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(w).Encode(model.ClientMessage{Move: to}); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Receive reads the next server message and applies it to the mirror.
func (c *Client) Receive() (model.ServerMessage, error) {
	var m model.ServerMessage
	if c.ReadTimeout > 0 {
		c.Conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
	}
	_, r, err := c.Conn.NextReader()
	if err != nil {
		return m, err
	}
	if err = gob.NewDecoder(r).Decode(&m); err != nil {
		return m, fmt.Errorf("cant decode server message: %w", err)
	}
	c.Apply(m)
	return m, nil
}

// Apply folds a server message into the mirror. Sections are applied in
// the order the server produced them: spawns, moves, eliminations, turns.
func (c *Client) Apply(m model.ServerMessage) {
	for _, s := range m.Setup {
		c.Id = s.PlayerKey
		c.Turn = s.Turn
		c.CellLifetime = s.CellLifetime
		c.Grid = model.NewGrid(s.Size)
		for _, cell := range s.Cells {
			c.Grid.Place(cell.Point, cell.Owner, cell.RemainingTurns)
		}
		for _, p := range s.Players {
			c.Players[p.ID] = p
		}
	}
	for _, p := range m.Spawns {
		c.Players[p.ID] = p
		c.place(p)
	}
	for _, mv := range m.Moves {
		if !mv.Success {
			log.Debugf("move to %v refused", mv.Target)
			continue
		}
		c.Players[mv.Player.ID] = mv.Player
		c.place(mv.Player)
	}
	for _, p := range m.Eliminations {
		c.Eliminated[p.ID] = true
	}
	for _, t := range m.Turns {
		if c.Grid != nil {
			c.Grid.DecayAndSweep()
			for _, p := range t.Cleared {
				c.Grid.Clear(p)
			}
		}
		c.Turn = t.Turn
	}
	for _, over := range m.GameOver {
		c.Over = true
		c.Winner = over.Winner
	}
}

func (c *Client) place(p model.Player) {
	if c.Grid != nil && c.Grid.InBounds(p.Position) {
		c.Grid.Place(p.Position, p.ID, c.CellLifetime)
	}
}

// LegalMoves mirrors the server's rule for this client's player. It is
// empty when the player already moved this turn.
func (c *Client) LegalMoves() []model.Point {
	me, found := c.Players[c.Id]
	if !found || c.Grid == nil || c.Over || c.Eliminated[c.Id] || me.HasMovedThisTurn(c.Turn) {
		return nil
	}
	var moves []model.Point
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			p := me.Position.Add(dx, dy)
			if c.Grid.InBounds(p) && !c.Grid.Occupied(p) {
				moves = append(moves, p)
			}
		}
	}
	return moves
}
