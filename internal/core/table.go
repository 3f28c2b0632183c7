package core

// Table is the fixed logical geometry of the shared play area, in table units.
// The server simulates on the same numbers; they are never negotiated.
type Table struct {
	Width        float64
	Height       float64
	PaddleWidth  float64
	PaddleHeight float64
	BallSize     float64
	// PaddleInset is the distance of each paddle from its side wall.
	PaddleInset float64
}

// DefaultTable returns the 900x500 table with 14x100 paddles and a 14 unit ball.
func DefaultTable() Table {
	return Table{
		Width:        900,
		Height:       500,
		PaddleWidth:  14,
		PaddleHeight: 100,
		BallSize:     14,
		PaddleInset:  2,
	}
}

// MaxPaddleY is the largest legal top edge for a paddle.
func (t Table) MaxPaddleY() float64 {
	return t.Height - t.PaddleHeight
}

// ClampPaddle restricts a paddle top edge to [0, Height-PaddleHeight].
func (t Table) ClampPaddle(y float64) float64 {
	return ClampF(y, 0, t.MaxPaddleY())
}

// CenteredPaddleY is the top edge of a vertically centred paddle.
func (t Table) CenteredPaddleY() float64 {
	return t.Height/2 - t.PaddleHeight/2
}
