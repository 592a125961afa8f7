package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	height := rect.Dy()
	if topHeightPx < 0 {
		topHeightPx = 0
	}
	if topHeightPx > height {
		topHeightPx = height
	}
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// Rows cuts rect into consecutive full-width rows of pitchPx, top to bottom.
// A remainder shorter than pitchPx is dropped.
func Rows(rect image.Rectangle, pitchPx int) []image.Rectangle {
	rect = Normalize(rect)
	if pitchPx <= 0 {
		return nil
	}
	var rows []image.Rectangle
	for y := rect.Min.Y; y+pitchPx <= rect.Max.Y; y += pitchPx {
		rows = append(rows, image.Rect(rect.Min.X, y, rect.Max.X, y+pitchPx))
	}
	return rows
}

// HLine returns a one pixel high rectangle spanning rect at y.
func HLine(rect image.Rectangle, y int) image.Rectangle {
	rect = Normalize(rect)
	return image.Rect(rect.Min.X, y, rect.Max.X, y+1)
}
