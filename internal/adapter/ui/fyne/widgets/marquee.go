package widgets

import "strings"

const marqueeGap = "    "

// Marquee scrolls a call title that is wider than the status line.
type Marquee struct {
	runes []rune
	width int
	pos   int
}

// NewMarquee creates a marquee showing width runes of text.
func NewMarquee(text string, width int) *Marquee {
	return &Marquee{runes: []rune(text), width: max(width, 1)}
}

// Scrolls reports whether the text is too wide to show at once.
func (m *Marquee) Scrolls() bool {
	return len(m.runes) > m.width
}

// Text returns the visible window without advancing.
func (m *Marquee) Text() string {
	if !m.Scrolls() {
		return string(m.runes)
	}
	loop := append(append([]rune{}, m.runes...), []rune(marqueeGap)...)
	var b strings.Builder
	for i := 0; i < m.width; i++ {
		b.WriteRune(loop[(m.pos+i)%len(loop)])
	}
	return b.String()
}

// Rotate advances by one rune and returns the visible window. Short titles
// never move.
func (m *Marquee) Rotate() string {
	if m.Scrolls() {
		m.pos = (m.pos + 1) % (len(m.runes) + len(marqueeGap))
	}
	return m.Text()
}
