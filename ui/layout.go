package ui

const (
	maxScores     = 200 // Maximum number of scores to show in graph
	borderPadding = 10  // Padding around game area
	minCellSize   = 4
)

// Layout is the pixel geometry of one frame. It depends only on the window
// size and the grid side, so it is computed without touching raylib.
type Layout struct {
	ScreenWidth  int32
	ScreenHeight int32

	CellSize  int32
	OffsetX   int32
	OffsetY   int32
	GridPixel int32

	PanelX      int32
	PanelWidth  int32
	GraphWidth  int32
	GraphHeight int32

	FontSize   int32
	LineHeight int32
}

// ComputeLayout fits a square grid of gridSize cells on the left of the
// window and a stats panel on the right.
func ComputeLayout(screenWidth, screenHeight int32, gridSize int) Layout {
	l := Layout{ScreenWidth: screenWidth, ScreenHeight: screenHeight}

	l.PanelWidth = screenWidth / 4
	gameWidth := screenWidth - l.PanelWidth

	availableWidth := gameWidth - borderPadding*2
	availableHeight := screenHeight - borderPadding*2
	if gridSize < 1 {
		gridSize = 1
	}
	l.CellSize = max(min(availableWidth, availableHeight)/int32(gridSize), minCellSize)
	l.GridPixel = l.CellSize * int32(gridSize)

	l.OffsetX = borderPadding + max((availableWidth-l.GridPixel)/2, 0)
	l.OffsetY = borderPadding + max((availableHeight-l.GridPixel)/2, 0)

	l.PanelX = gameWidth + 5
	l.GraphWidth = max(l.PanelWidth-20, 0)
	l.GraphHeight = screenHeight / 5

	l.FontSize = max(min(screenHeight/35, l.PanelWidth/12), 10)
	l.LineHeight = l.FontSize + l.FontSize/2
	return l
}

// Cell returns the top-left pixel of grid cell (x, y).
func (l Layout) Cell(x, y int) (int32, int32) {
	return l.OffsetX + int32(x)*l.CellSize, l.OffsetY + int32(y)*l.CellSize
}

// graphPoint maps the i-th score of the history graph to pixels.
func (l Layout) graphPoint(originX, originY int32, i int, score, maxScore float64) (int32, int32) {
	if maxScore <= 0 {
		maxScore = 1
	}
	x := originX + int32(float64(l.GraphWidth)*float64(i)/float64(maxScores))
	y := originY + l.GraphHeight - int32(float64(l.GraphHeight)*score/maxScore)
	return x, y
}
