package entity

import (
	"gridsnake/game/types"
)

// Snake is the player's body. Body[0] is the head.
type Snake struct {
	Body []types.Point
}

func NewSnake(startPos types.Point) *Snake {
	return &Snake{
		Body: []types.Point{startPos},
	}
}

// Advance prepends newHead and drops the tail unless the snake grows.
func (s *Snake) Advance(newHead types.Point, grow bool) {
	s.Body = append(s.Body, types.Point{})
	copy(s.Body[1:], s.Body[:len(s.Body)-1])
	s.Body[0] = newHead
	if !grow {
		s.RemoveTail()
	}
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 0 {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

func (s *Snake) GetHead() types.Point {
	return s.Body[0]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Occupies reports whether any segment sits on p.
func (s *Snake) Occupies(p types.Point) bool {
	for _, part := range s.Body {
		if part == p {
			return true
		}
	}
	return false
}

// Tail returns every segment except the head.
func (s *Snake) Tail() []types.Point {
	if len(s.Body) == 0 {
		return nil
	}
	return s.Body[1:]
}

// Segments returns a copy of the body safe to hand to renderers.
func (s *Snake) Segments() []types.Point {
	body := make([]types.Point, len(s.Body))
	copy(body, s.Body)
	return body
}

func (s *Snake) Clone() *Snake {
	return &Snake{Body: s.Segments()}
}
