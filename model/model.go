package model

type PlayerID string

type Point struct {
	X, Y int
}

type Player struct {
	ID            PlayerID
	Name          string
	Position      Point
	LastMovedTurn int
}

// Cell is a slot marked by a player's trail. It disappears once
// RemainingTurns counts down to zero.
type Cell struct {
	Owner          PlayerID
	RemainingTurns int
}

// PlacedCell is a Cell together with its location, used where a sparse
// listing of the map is needed.
type PlacedCell struct {
	Point
	Cell
}

// Grid is a Size x Size map, indexed Slots[x][y]. A nil slot is empty.
type Grid struct {
	Size  int
	Slots [][]*Cell
}
