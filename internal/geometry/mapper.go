// Package geometry converts raw pointer events on a rendered page element
// into normalized page-relative coordinates.
package geometry

// PointerEvent carries the client-space position of a pointer event.
type PointerEvent struct {
	ClientX float64
	ClientY float64
}

// Rect is the bounding rectangle of the page element the event landed on,
// in the same client space as the pointer event.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// PagePoint is a normalized position on a specific page. X and Y are
// fractions of the rendered page size in [0,1], which keeps stored
// annotations zoom-independent; events just outside the page element can
// push them outside [0,1] and they are reported unclamped.
type PagePoint struct {
	Page int
	X    float64
	Y    float64
}

// MapToPage maps a pointer event within rect to fractional page coordinates.
// Pages render in a known, stable order, so the page index is supplied by
// the caller rather than derived from geometry.
func MapToPage(ev PointerEvent, rect Rect, page int) PagePoint {
	p := PagePoint{Page: page}
	if rect.Width != 0 {
		p.X = (ev.ClientX - rect.Left) / rect.Width
	}
	if rect.Height != 0 {
		p.Y = (ev.ClientY - rect.Top) / rect.Height
	}
	return p
}
