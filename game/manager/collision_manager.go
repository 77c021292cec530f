package manager

import (
	"gridsnake/game/types"
)

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// Check tests a post-move head against the walls and the rest of the body.
// body must not include the head itself.
func (cm *CollisionManager) Check(head types.Point, body []types.Point) CollisionType {
	if cm.IsWallCollision(head) {
		return WallCollision
	}
	if isSelfCollision(head, body) {
		return SelfCollision
	}
	return NoCollision
}

// IsWallCollision checks if a position lies outside the grid
func (cm *CollisionManager) IsWallCollision(pos types.Point) bool {
	return !cm.grid.Contains(pos)
}

func isSelfCollision(pos types.Point, body []types.Point) bool {
	for _, part := range body {
		if pos == part {
			return true
		}
	}
	return false
}
