package reader

// HighlightStyle describes how a highlighted unit is drawn.
type HighlightStyle struct {
	Background string
	Foreground string
	Underline  bool
	Brush      string
}

// View renders highlighting for units. The reader calls it while holding its
// own lock, so implementations must not call back into the reader.
type View interface {
	Highlight(index int, style HighlightStyle)
	Unhighlight(index int)
	// Position returns the horizontal position of the unit, if it is laid out.
	Position(index int) (x float64, ok bool)
	ScrollTo(index int)
}

type nopView struct{}

func (nopView) Highlight(int, HighlightStyle) {}
func (nopView) Unhighlight(int)               {}
func (nopView) Position(int) (float64, bool)  { return 0, false }
func (nopView) ScrollTo(int)                  {}
