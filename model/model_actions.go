package model

import "fmt"

func NewGrid(size int) *Grid {
	slots := make([][]*Cell, 0, size)
	for x := 0; x < size; x++ {
		slots = append(slots, make([]*Cell, size))
	}
	return &Grid{Size: size, Slots: slots}
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Adjacent reports whether q is within one step of p in any of the eight
// directions. p itself counts as adjacent.
func (p Point) Adjacent(q Point) bool {
	return abs(p.X-q.X) < 2 && abs(p.Y-q.Y) < 2
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

// Occupied panics on out of bounds points, callers check InBounds first.
func (g *Grid) Occupied(p Point) bool {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("grid: Occupied%v outside %dx%d", p, g.Size, g.Size))
	}
	return g.Slots[p.X][p.Y] != nil
}

// Place stamps a fresh cell, whatever was there before.
func (g *Grid) Place(p Point, owner PlayerID, lifetime int) {
	g.Slots[p.X][p.Y] = &Cell{Owner: owner, RemainingTurns: lifetime}
}

func (g *Grid) Clear(p Point) {
	if g.InBounds(p) {
		g.Slots[p.X][p.Y] = nil
	}
}

func (g *Grid) At(p Point) (Cell, bool) {
	if !g.InBounds(p) || g.Slots[p.X][p.Y] == nil {
		return Cell{}, false
	}
	return *g.Slots[p.X][p.Y], true
}

// DecayAndSweep ages every cell by one turn and clears the ones that ran
// out. It returns the cleared points.
func (g *Grid) DecayAndSweep() []Point {
	var cleared []Point
	for x, column := range g.Slots {
		for y, cell := range column {
			if cell == nil {
				continue
			}
			cell.RemainingTurns--
			if cell.RemainingTurns <= 0 {
				column[y] = nil
				cleared = append(cleared, Point{X: x, Y: y})
			}
		}
	}
	return cleared
}

// Cells lists occupied slots column by column.
func (g *Grid) Cells() []PlacedCell {
	cells := make([]PlacedCell, 0)
	for x, column := range g.Slots {
		for y, cell := range column {
			if cell != nil {
				cells = append(cells, PlacedCell{Point: Point{X: x, Y: y}, Cell: *cell})
			}
		}
	}
	return cells
}

// Snapshot returns a deep copy that shares nothing with g.
func (g *Grid) Snapshot() *Grid {
	s := NewGrid(g.Size)
	for x, column := range g.Slots {
		for y, cell := range column {
			if cell != nil {
				c := *cell
				s.Slots[x][y] = &c
			}
		}
	}
	return s
}

func (p *Player) HasMovedThisTurn(turn int) bool {
	return p.LastMovedTurn == turn
}

// Move puts the player on to. Spawning passes markMoved=false so the
// placement does not use up the player's move for the turn.
func (p *Player) Move(to Point, turn int, markMoved bool) {
	p.Position = to
	if markMoved {
		p.LastMovedTurn = turn
	}
}
