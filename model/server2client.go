package model

// ServerMessage is one gob frame sent to a client. Source identifies the
// observer that caused it so the originator can drop its own echo.
type ServerMessage struct {
	Source       string
	Setup        []Setup
	Spawns       []Player
	Moves        []MoveResult
	Turns        []TurnAdvance
	Eliminations []Player
	GameOver     []GameOver
}

type Setup struct {
	Size         int
	CellLifetime int
	Turn         int
	PlayerKey    PlayerID
	Players      []Player
	Cells        []PlacedCell
}

type MoveResult struct {
	Target  Point
	Success bool
	Player  Player
}

type TurnAdvance struct {
	Turn    int
	Cleared []Point
}

type GameOver struct {
	Winner PlayerID
}
