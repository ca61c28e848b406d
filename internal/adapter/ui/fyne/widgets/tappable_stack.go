package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// TappableStack is a container that wraps content and responds to taps.
// The window uses it over the user orb: a primary tap toggles the call and a
// secondary tap (right-click) opens the quality menu.
type TappableStack struct {
	widget.BaseWidget

	content        fyne.CanvasObject
	onTap          func()
	onSecondaryTap func(*fyne.PointEvent)
}

// NewTappableStack creates a new tappable stack with the given content.
func NewTappableStack(content fyne.CanvasObject, onTap func(), onSecondaryTap func(*fyne.PointEvent)) *TappableStack {
	t := &TappableStack{
		content:        content,
		onTap:          onTap,
		onSecondaryTap: onSecondaryTap,
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// Tapped implements fyne.Tappable (primary tap - left click).
func (t *TappableStack) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

// TappedSecondary implements fyne.SecondaryTappable (right-click).
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.onSecondaryTap != nil {
		t.onSecondaryTap(pe)
	}
}

// MouseIn implements desktop.Hoverable.
func (t *TappableStack) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (t *TappableStack) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (t *TappableStack) MouseOut() {}

// Cursor implements desktop.Cursorable.
func (t *TappableStack) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

// Ensure TappableStack implements the required interfaces
var _ fyne.Tappable = (*TappableStack)(nil)
var _ fyne.SecondaryTappable = (*TappableStack)(nil)
var _ desktop.Hoverable = (*TappableStack)(nil)
var _ desktop.Cursorable = (*TappableStack)(nil)
