// Package render paints a snapshot of the table into a screen buffer.
package render

import (
	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/snapshot"
)

// Glyphs used for the table.
const (
	NetChar    = '│'
	PaddleChar = '█'
	BallChar   = '●'
)

// Colors of the table elements.
const (
	NetColor     = core.ColorGray
	PaddleAColor = core.ColorCyan
	PaddleBColor = core.ColorYellow
	BallColor    = core.ColorBrightWhite
)

// Renderer scales table coordinates onto a cell grid. It draws exactly what
// the snapshot says, so two frames of the same snapshot are identical.
type Renderer struct {
	table core.Table
}

// NewRenderer creates a renderer for table.
func NewRenderer(table core.Table) Renderer {
	return Renderer{table: table}
}

// Draw clears dst and paints the divider, both paddles and the ball.
func (r Renderer) Draw(dst *core.Screen, snap snapshot.Snapshot) {
	dst.Clear()
	if dst.Width() == 0 || dst.Height() == 0 {
		return
	}
	vp := core.NewViewport(core.NewRect(0, 0, dst.Width(), dst.Height()), r.table)

	// Dashed centre divider
	centerX := vp.Col(r.table.Width / 2)
	for y := 0; y < dst.Height(); y += 2 {
		dst.SetColored(centerX, y, NetChar, NetColor)
	}

	paddleRows := vp.Rows(r.table.PaddleHeight)
	leftX := vp.Col(r.table.PaddleInset)
	rightX := core.Clamp(vp.Col(r.table.Width-r.table.PaddleInset-r.table.PaddleWidth), 0, dst.Width()-1)
	r.drawPaddle(dst, vp, leftX, snap.PaddleA.Y, paddleRows, PaddleAColor)
	r.drawPaddle(dst, vp, rightX, snap.PaddleB.Y, paddleRows, PaddleBColor)

	// The ball may be outside the table while a point is being scored;
	// Screen clips it.
	half := r.table.BallSize / 2
	dst.SetColored(vp.Col(snap.Ball.X+half), vp.Row(snap.Ball.Y+half), BallChar, BallColor)
}

func (r Renderer) drawPaddle(dst *core.Screen, vp core.Viewport, x int, y float64, rows int, c core.Color) {
	top := core.Clamp(vp.Row(y), 0, max(dst.Height()-rows, 0))
	dst.DrawVLine(x, top, rows, PaddleChar, c)
}
