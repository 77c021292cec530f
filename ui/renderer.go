package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"gridsnake/game"
	"gridsnake/game/types"
	"gridsnake/stats"
)

var (
	snakeColor = rl.Color{R: 76, G: 175, B: 80, A: 255}
	headColor  = rl.Color{R: 129, G: 199, B: 132, A: 255}
	foodColor  = rl.Red
	panelColor = rl.Color{R: 40, G: 40, B: 40, A: 255}
	veilColor  = rl.Color{R: 0, G: 0, B: 0, A: 170}
)

// HUD carries the front-end state shown next to the board.
type HUD struct {
	Speed types.Speed
	Muted bool
}

type Renderer struct {
	layout Layout
	stats  *stats.GameStats
}

func NewRenderer(st *stats.GameStats) *Renderer {
	return &Renderer{stats: st}
}

func (r *Renderer) UpdateDimensions(gridSize int) {
	r.layout = ComputeLayout(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), gridSize)
}

func (r *Renderer) Draw(snap game.Snapshot, hud HUD) {
	r.UpdateDimensions(snap.GridSize)
	l := r.layout

	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Black)

	rl.DrawRectangle(l.OffsetX-1, l.OffsetY-1, l.GridPixel+2, l.GridPixel+2, rl.DarkGray)
	for x := 0; x < snap.GridSize; x++ {
		for y := 0; y < snap.GridSize; y++ {
			px, py := l.Cell(x, y)
			rl.DrawRectangleLines(px, py, l.CellSize, l.CellSize, rl.Gray)
		}
	}

	if snap.HasFood {
		px, py := l.Cell(snap.Food.X, snap.Food.Y)
		rl.DrawRectangle(px, py, l.CellSize, l.CellSize, foodColor)
	}

	for i := len(snap.Snake) - 1; i >= 0; i-- {
		p := snap.Snake[i]
		px, py := l.Cell(p.X, p.Y)
		color := snakeColor
		if i == 0 {
			color = headColor
		}
		rl.DrawRectangle(px, py, l.CellSize, l.CellSize, color)
	}
	if head, ok := snap.Head(); ok {
		r.drawDirection(head, snap.Direction)
	}

	r.drawStatsPanel(snap, hud)
	r.drawOverlay(snap)
}

// drawDirection marks the head with a triangle pointing where it moves.
func (r *Renderer) drawDirection(head, dir types.Point) {
	heading := types.DirectionOf(dir)
	if heading == types.None {
		return
	}
	l := r.layout
	headX, headY := l.Cell(head.X, head.Y)
	cell := l.CellSize
	half := cell / 2

	var a, b, c rl.Vector2
	switch heading {
	case types.Right:
		a = rl.Vector2{X: float32(headX + cell), Y: float32(headY + half)}
		b = rl.Vector2{X: float32(headX + half), Y: float32(headY)}
		c = rl.Vector2{X: float32(headX + half), Y: float32(headY + cell)}
	case types.Left:
		a = rl.Vector2{X: float32(headX), Y: float32(headY + half)}
		b = rl.Vector2{X: float32(headX + half), Y: float32(headY + cell)}
		c = rl.Vector2{X: float32(headX + half), Y: float32(headY)}
	case types.Down:
		a = rl.Vector2{X: float32(headX + half), Y: float32(headY + cell)}
		b = rl.Vector2{X: float32(headX + cell), Y: float32(headY + half)}
		c = rl.Vector2{X: float32(headX), Y: float32(headY + half)}
	default:
		a = rl.Vector2{X: float32(headX + half), Y: float32(headY)}
		b = rl.Vector2{X: float32(headX), Y: float32(headY + half)}
		c = rl.Vector2{X: float32(headX + cell), Y: float32(headY + half)}
	}
	// raylib wants counter-clockwise vertices.
	rl.DrawTriangle(a, b, c, rl.Yellow)
}

func (r *Renderer) drawStatsPanel(snap game.Snapshot, hud HUD) {
	l := r.layout
	x := l.PanelX
	y := int32(10)

	rl.DrawRectangle(x-5, 0, l.PanelWidth+5, l.ScreenHeight, panelColor)

	line := func(text string, color rl.Color) {
		rl.DrawText(text, x, y, l.FontSize, color)
		y += l.LineHeight
	}

	line(fmt.Sprintf("Score: %d", snap.Score), rl.White)
	line(fmt.Sprintf("High Score: %d", snap.HighScore), rl.Gold)
	y += l.LineHeight / 2

	sound := "on"
	if hud.Muted {
		sound = "off"
	}
	line(fmt.Sprintf("Speed: %s", hud.Speed), rl.LightGray)
	line(fmt.Sprintf("Sound: %s", sound), rl.LightGray)
	y += l.LineHeight / 2

	if r.stats != nil {
		sum := r.stats.Summary()
		line("Session:", rl.White)
		line(fmt.Sprintf("Games: %d", sum.GamesPlayed), rl.LightGray)
		line(fmt.Sprintf("Avg: %.2f", sum.AverageScore), rl.LightGray)
		line(fmt.Sprintf("Median: %.1f", sum.MedianScore), rl.LightGray)
		line(fmt.Sprintf("Best: %d", sum.MaxScore), rl.LightGray)
		line(fmt.Sprintf("Avg time: %.1fs", sum.AverageDuration), rl.LightGray)
		r.drawScoreGraph(sum.AverageScore)
	}

	help := []string{"Arrows/WASD move", "Space pause", "R restart", "M mute", "1-4 speed", "Q quit"}
	hy := l.ScreenHeight - l.GraphHeight - l.FontSize*3 - int32(len(help))*l.LineHeight
	for _, h := range help {
		if hy > y {
			rl.DrawText(h, x, hy, l.FontSize*3/4, rl.Gray)
		}
		hy += l.LineHeight
	}
}

func (r *Renderer) drawScoreGraph(avgScore float64) {
	l := r.layout
	graphX := l.PanelX
	graphY := l.ScreenHeight - l.GraphHeight - l.FontSize*2

	rl.DrawRectangleLines(graphX, graphY, l.GraphWidth, l.GraphHeight, rl.White)
	rl.DrawText("Scores", graphX, graphY-l.FontSize-5, l.FontSize, rl.White)

	scores := r.stats.RecentScores(maxScores)
	if len(scores) < 2 {
		return
	}
	maxScore := 1.0
	for _, s := range scores {
		maxScore = max(maxScore, s)
	}
	for j := 1; j < len(scores); j++ {
		x1, y1 := l.graphPoint(graphX, graphY, j-1, scores[j-1], maxScore)
		x2, y2 := l.graphPoint(graphX, graphY, j, scores[j], maxScore)
		rl.DrawLine(x1, y1, x2, y2, snakeColor)
	}

	_, avgY := l.graphPoint(graphX, graphY, 0, avgScore, maxScore)
	for x := graphX; x < graphX+l.GraphWidth; x += 5 {
		rl.DrawLine(x, avgY, x+2, avgY, rl.Gold)
	}
}

func (r *Renderer) drawOverlay(snap game.Snapshot) {
	var title, hint string
	switch snap.State {
	case types.NotStarted:
		title, hint = "SNAKE", "Press Enter or an arrow key to start"
	case types.Paused:
		title, hint = "PAUSED", "Press Space to resume"
	case types.Ended:
		title = "GAME OVER"
		if snap.Outcome == game.OutcomeBoardFull {
			title = "BOARD CLEARED"
		}
		hint = fmt.Sprintf("Final score: %d   Press R to restart", snap.Score)
	default:
		return
	}

	l := r.layout
	rl.DrawRectangle(l.OffsetX, l.OffsetY, l.GridPixel, l.GridPixel, veilColor)

	titleSize := l.FontSize * 2
	tw := rl.MeasureText(title, titleSize)
	cy := l.OffsetY + l.GridPixel/2 - titleSize
	rl.DrawText(title, l.OffsetX+(l.GridPixel-tw)/2, cy, titleSize, rl.White)

	hw := rl.MeasureText(hint, l.FontSize)
	rl.DrawText(hint, l.OffsetX+(l.GridPixel-hw)/2, cy+titleSize+l.FontSize, l.FontSize, rl.LightGray)
}
