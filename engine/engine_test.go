package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zucenko/trails/model"
)

type recordingSink struct {
	spawns       []model.Player
	moves        []model.Player
	eliminations []model.Player
	turns        []int
	cleared      [][]model.Point
}

func (r *recordingSink) SpawnPlayer(p model.Player)     { r.spawns = append(r.spawns, p) }
func (r *recordingSink) MovePlayer(p model.Player)      { r.moves = append(r.moves, p) }
func (r *recordingSink) EliminatePlayer(p model.Player) { r.eliminations = append(r.eliminations, p) }
func (r *recordingSink) AdvanceTurn(turn int, cleared []model.Point) {
	r.turns = append(r.turns, turn)
	r.cleared = append(r.cleared, cleared)
}

func newEngine(t *testing.T, size, lifetime int, entries ...model.Point) (*Engine, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	e, err := New(Config{MapSize: size, CellLifetime: lifetime, Entries: entries}, WithSink(sink))
	require.NoError(t, err)
	return e, sink
}

func pt(x, y int) model.Point {
	return model.Point{X: x, Y: y}
}

func TestNew(t *testing.T) {
	t.Run("rejects bad gameplay values", func(t *testing.T) {
		for _, cfg := range []Config{
			{MapSize: 0, CellLifetime: 2},
			{MapSize: 5, CellLifetime: 0},
			{MapSize: -1, CellLifetime: -1},
			{MapSize: 2, CellLifetime: 2}, // default entry (0,2) does not fit
			{MapSize: 5, CellLifetime: 2, Entries: []model.Point{{X: 5, Y: 0}}},
		} {
			_, err := New(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig, "config %+v", cfg)
		}
	})

	t.Run("starts at turn one with an empty map and no sink", func(t *testing.T) {
		e, err := New(Config{MapSize: 5, CellLifetime: 2})
		require.NoError(t, err)
		require.Equal(t, 1, e.Turn())
		require.Empty(t, e.Grid().Cells())
		require.False(t, e.IsGameOver())
		require.NoError(t, e.Spawn("a", "A"), "nil sink must be a no-op")
	})
}

func TestSpawn(t *testing.T) {
	t.Run("places the player at the default entry without using their move", func(t *testing.T) {
		e, sink := newEngine(t, 5, 2)

		require.NoError(t, e.Spawn("a", "A"))

		p, found := e.Player("a")
		require.True(t, found)
		require.Equal(t, pt(0, 2), p.Position)
		require.Equal(t, 0, p.LastMovedTurn)
		cell, found := e.Grid().At(pt(0, 2))
		require.True(t, found)
		require.Equal(t, model.Cell{Owner: "a", RemainingTurns: 2}, cell)
		require.Len(t, sink.spawns, 1)
		require.Equal(t, model.PlayerID("a"), sink.spawns[0].ID)
		require.True(t, e.CanMove(pt(1, 2), "a"))
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		e, sink := newEngine(t, 5, 2)
		require.NoError(t, e.Spawn("a", "A"))

		err := e.Spawn("a", "other")

		require.ErrorIs(t, err, ErrDuplicatePlayer)
		require.Len(t, e.Players(), 1)
		require.Equal(t, "A", e.Players()[0].Name)
		require.Len(t, sink.spawns, 1)
	})

	t.Run("hands out entries round robin in join order", func(t *testing.T) {
		e, _ := newEngine(t, 5, 2, pt(0, 0), pt(4, 4))
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))
		require.NoError(t, e.Spawn("c", "C"))

		players := e.Players()
		require.Equal(t, []model.Point{pt(0, 0), pt(4, 4), pt(0, 0)},
			[]model.Point{players[0].Position, players[1].Position, players[2].Position})
		cell, _ := e.Grid().At(pt(0, 0))
		require.Equal(t, model.PlayerID("c"), cell.Owner, "later spawn overwrites the entry cell")
	})
}

func TestCanMove(t *testing.T) {
	e, _ := newEngine(t, 5, 3)
	require.NoError(t, e.Spawn("a", "A"))
	require.NoError(t, e.Spawn("b", "B"))
	require.NoError(t, e.Move(pt(1, 2), "b"))

	cases := []struct {
		name   string
		target model.Point
		want   bool
	}{
		{"adjacent free cell", pt(0, 3), true},
		{"diagonal free cell", pt(1, 1), true},
		{"out of bounds", pt(-1, 2), false},
		{"too far", pt(2, 2), false},
		{"occupied by another trail", pt(1, 2), false},
		{"own cell counts as adjacent but is occupied", pt(0, 2), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, e.CanMove(c.target, "a"))
		})
	}

	t.Run("unknown player", func(t *testing.T) {
		require.False(t, e.CanMove(pt(0, 3), "nobody"))
	})

	t.Run("player who already moved this turn", func(t *testing.T) {
		require.False(t, e.CanMove(pt(2, 2), "b"))
	})
}

func TestMove(t *testing.T) {
	t.Run("unknown player is an error and changes nothing", func(t *testing.T) {
		e, sink := newEngine(t, 5, 2)

		err := e.Move(pt(1, 1), "ghost")

		require.ErrorIs(t, err, ErrUnknownPlayer)
		require.Empty(t, e.Grid().Cells())
		require.Empty(t, sink.moves)
	})

	t.Run("player cannot move twice in a turn", func(t *testing.T) {
		e, _ := newEngine(t, 5, 2)
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))

		require.NoError(t, e.Move(pt(1, 1), "a"))

		require.False(t, e.CanMove(pt(2, 1), "a"))
		require.Equal(t, 1, e.Turn())
	})

	t.Run("turn advances by one exactly when the last player moves", func(t *testing.T) {
		e, sink := newEngine(t, 5, 5)
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))
		require.NoError(t, e.Spawn("c", "C"))

		require.NoError(t, e.Move(pt(1, 1), "a"))
		require.Equal(t, 1, e.Turn())
		require.NoError(t, e.Move(pt(1, 2), "b"))
		require.Equal(t, 1, e.Turn())
		require.NoError(t, e.Move(pt(1, 3), "c"))
		require.Equal(t, 2, e.Turn())
		require.Equal(t, []int{2}, sink.turns)
		require.True(t, e.CanMove(pt(2, 1), "a"), "a may move again in the new turn")
		require.Len(t, sink.moves, 3)
		require.Equal(t, pt(1, 3), sink.moves[2].Position)
	})

	t.Run("decay removes the spawn cell after two sweeps", func(t *testing.T) {
		e, sink := newEngine(t, 5, 2)
		require.NoError(t, e.Spawn("a", "A"))

		require.True(t, e.CanMove(pt(1, 2), "a"))
		require.NoError(t, e.Move(pt(1, 2), "a"))

		// a single player completes the turn by moving
		require.Equal(t, 2, e.Turn())
		spawnCell, found := e.Grid().At(pt(0, 2))
		require.True(t, found, "still present after one sweep")
		require.Equal(t, 1, spawnCell.RemainingTurns)

		require.NoError(t, e.Move(pt(2, 2), "a"))

		require.Equal(t, 3, e.Turn())
		_, found = e.Grid().At(pt(0, 2))
		require.False(t, found)
		_, found = e.Grid().At(pt(1, 2))
		require.False(t, found)
		last, found := e.Grid().At(pt(2, 2))
		require.True(t, found)
		require.Equal(t, 1, last.RemainingTurns)
		require.Equal(t, [][]model.Point{nil, {pt(0, 2), pt(1, 2)}}, sink.cleared)
	})
}

func TestCheckEliminated(t *testing.T) {
	t.Run("corner player with every neighbour taken", func(t *testing.T) {
		e, sink := newEngine(t, 5, 9, pt(0, 0), pt(4, 4))
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))
		for _, p := range []model.Point{pt(1, 0), pt(0, 1), pt(1, 1)} {
			e.grid.Place(p, "b", 9)
		}

		require.True(t, e.CheckEliminated("a"))

		require.Equal(t, []model.PlayerID{"a"}, e.Eliminated())
		require.Equal(t, []model.PlayerID{"b"}, e.Active())
		require.Len(t, sink.eliminations, 1)
		require.Len(t, e.Players(), 2, "eliminated players stay in the roster")
		require.False(t, e.CanMove(pt(1, 1), "a"))
		require.False(t, e.IsGameOver(), "the engine never ends the game by itself")
	})

	t.Run("interior player with all eight neighbours taken", func(t *testing.T) {
		e, _ := newEngine(t, 5, 9, pt(2, 2))
		require.NoError(t, e.Spawn("a", "A"))
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx != 0 || dy != 0 {
					e.grid.Place(pt(2+dx, 2+dy), "b", 9)
				}
			}
		}

		require.True(t, e.CheckEliminated("a"))
		require.Equal(t, []model.PlayerID{"a"}, e.Eliminated())
	})

	t.Run("any single free neighbour keeps an interior player in", func(t *testing.T) {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				e, _ := newEngine(t, 5, 9, pt(2, 2))
				require.NoError(t, e.Spawn("a", "A"))
				free := pt(2+dx, 2+dy)
				for x := 1; x <= 3; x++ {
					for y := 1; y <= 3; y++ {
						if p := pt(x, y); p != free && p != pt(2, 2) {
							e.grid.Place(p, "b", 9)
						}
					}
				}

				require.False(t, e.CheckEliminated("a"), "free neighbour %v", free)
			}
		}
	})

	t.Run("only the own cell in the neighbourhood is taken", func(t *testing.T) {
		e, _ := newEngine(t, 5, 9)
		require.NoError(t, e.Spawn("a", "A"))

		require.False(t, e.CheckEliminated("a"))
		require.Empty(t, e.Eliminated())
	})

	t.Run("reports once", func(t *testing.T) {
		e, sink := newEngine(t, 1, 9, pt(0, 0))
		require.NoError(t, e.Spawn("a", "A"))

		require.True(t, e.CheckEliminated("a"))
		require.True(t, e.CheckEliminated("a"))
		require.Len(t, sink.eliminations, 1)
	})

	t.Run("turn is ignored", func(t *testing.T) {
		e, _ := newEngine(t, 5, 9)
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))
		require.NoError(t, e.Move(pt(1, 2), "a"))

		require.False(t, e.CheckEliminated("a"))
	})
}

func TestMoveElimination(t *testing.T) {
	t.Run("mover that boxes itself in is eliminated", func(t *testing.T) {
		e, sink := newEngine(t, 5, 9, pt(1, 0), pt(4, 4))
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))
		e.grid.Place(pt(0, 1), "b", 9)
		e.grid.Place(pt(1, 1), "b", 9)

		require.True(t, e.CanMove(pt(0, 0), "a"))
		require.NoError(t, e.Move(pt(0, 0), "a"))

		require.Equal(t, []model.PlayerID{"a"}, e.Eliminated())
		require.Len(t, sink.eliminations, 1)
		require.Len(t, sink.moves, 1)
	})

	t.Run("eliminated players no longer hold up the turn", func(t *testing.T) {
		e, _ := newEngine(t, 5, 9, pt(0, 0), pt(2, 2))
		require.NoError(t, e.Spawn("a", "A"))
		require.NoError(t, e.Spawn("b", "B"))
		e.grid.Place(pt(1, 0), "b", 9)
		e.grid.Place(pt(0, 1), "b", 9)

		// b closes the last gap next to a, which is still waiting to move
		require.NoError(t, e.Move(pt(1, 1), "b"))

		require.Equal(t, []model.PlayerID{"a"}, e.Eliminated())
		require.Equal(t, 2, e.Turn())
	})
}

func TestGridIsACopy(t *testing.T) {
	e, _ := newEngine(t, 5, 2)
	require.NoError(t, e.Spawn("a", "A"))

	g := e.Grid()
	g.Slots[0][2].RemainingTurns = 99
	g.Place(pt(3, 3), "x", 1)

	cell, _ := e.Grid().At(pt(0, 2))
	require.Equal(t, 2, cell.RemainingTurns)
	_, found := e.Grid().At(pt(3, 3))
	require.False(t, found)
}

func TestEnd(t *testing.T) {
	e, _ := newEngine(t, 5, 2)
	e.End()
	e.End()
	require.True(t, e.IsGameOver())
}
