package manager

import (
	"errors"

	"golang.org/x/exp/rand"

	"gridsnake/game/entity"
	"gridsnake/game/types"
)

// MaxPlacementAttempts bounds rejection sampling before falling back to a
// scan of the free cells.
const MaxPlacementAttempts = 256

// ErrBoardFull is returned when the snake covers every cell.
var ErrBoardFull = errors.New("board full: no free cell for food")

type FoodManager struct {
	grid types.Grid
	rng  *rand.Rand
}

func NewFoodManager(grid types.Grid, rng *rand.Rand) *FoodManager {
	return &FoodManager{
		grid: grid,
		rng:  rng,
	}
}

// PlaceFood picks a uniformly random cell not occupied by the snake.
func (fm *FoodManager) PlaceFood(snake *entity.Snake) (types.Point, error) {
	if snake.Len() >= fm.grid.Cells() {
		return types.Point{}, ErrBoardFull
	}

	for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
		food := types.Point{
			X: fm.rng.Intn(fm.grid.Size),
			Y: fm.rng.Intn(fm.grid.Size),
		}
		if !snake.Occupies(food) {
			return food, nil
		}
	}

	free := fm.freeCells(snake)
	if len(free) == 0 {
		return types.Point{}, ErrBoardFull
	}
	return free[fm.rng.Intn(len(free))], nil
}

func (fm *FoodManager) freeCells(snake *entity.Snake) []types.Point {
	occupied := make(map[types.Point]struct{}, snake.Len())
	for _, p := range snake.Body {
		occupied[p] = struct{}{}
	}

	free := make([]types.Point, 0, fm.grid.Cells()-len(occupied))
	for y := 0; y < fm.grid.Size; y++ {
		for x := 0; x < fm.grid.Size; x++ {
			p := types.Point{X: x, Y: y}
			if _, ok := occupied[p]; !ok {
				free = append(free, p)
			}
		}
	}
	return free
}
